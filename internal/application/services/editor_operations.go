package services

import (
	"sort"

	"github.com/appcanvas/builder/internal/domain/document"
	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/pkg/errors"
)

// OperationType names one editor mutation
type OperationType string

const (
	OpAddComponent    OperationType = "addComponent"
	OpUpdateComponent OperationType = "updateComponent"
	OpDeleteComponent OperationType = "deleteComponent"
	OpAddScreen       OperationType = "addScreen"
	OpUpdateScreen    OperationType = "updateScreen"
	OpDeleteScreen    OperationType = "deleteScreen"
	OpAddDatabase     OperationType = "addDatabase"
	OpUpdateDatabase  OperationType = "updateDatabase"
	OpDeleteDatabase  OperationType = "deleteDatabase"
	OpAddField        OperationType = "addField"
	OpSaveRecord      OperationType = "saveRecord"
	OpDeleteRecord    OperationType = "deleteRecord"
	OpSelectComponent OperationType = "selectComponent"
	OpSelectScreen    OperationType = "selectScreen"
	OpNavigate        OperationType = "navigate"
	OpSetCanvasSize   OperationType = "setCanvasSize"
	OpTogglePreview   OperationType = "togglePreview"
)

// Operation is the tagged envelope accepted by EditorService.Apply. Type
// selects the mutation; only the fields it reads need to be set.
type Operation struct {
	Type OperationType `json:"type"`

	ScreenID    string `json:"screenId,omitempty"`
	ComponentID string `json:"componentId,omitempty"`
	DatabaseID  string `json:"databaseId,omitempty"`
	RecordID    string `json:"recordId,omitempty"`

	Component      *models.Component        `json:"component,omitempty"`
	ComponentPatch *document.ComponentPatch `json:"componentPatch,omitempty"`
	Screen         *models.Screen           `json:"screen,omitempty"`
	ScreenPatch    *document.ScreenPatch    `json:"screenPatch,omitempty"`
	Database       *models.Database         `json:"database,omitempty"`
	DatabasePatch  *document.DatabasePatch  `json:"databasePatch,omitempty"`
	Field          *models.Field            `json:"field,omitempty"`
	Data           map[string]any           `json:"data,omitempty"`
	CanvasSize     models.CanvasSize        `json:"canvasSize,omitempty"`
}

// operationFunc applies one operation to a state
type operationFunc func(s document.State, op Operation) (document.State, error)

var operations = map[OperationType]operationFunc{
	OpAddComponent: func(s document.State, op Operation) (document.State, error) {
		screenID := op.ScreenID
		if screenID == "" {
			screenID = s.CurrentScreenID
		}
		return document.AddComponent(s, screenID, op.Component)
	},
	OpUpdateComponent: func(s document.State, op Operation) (document.State, error) {
		if op.ComponentPatch == nil {
			return s, errors.NewValidationError("componentPatch", "componentPatch is required")
		}
		return document.UpdateComponent(s, op.ScreenID, op.ComponentID, *op.ComponentPatch)
	},
	OpDeleteComponent: func(s document.State, op Operation) (document.State, error) {
		return document.DeleteComponent(s, op.ScreenID, op.ComponentID)
	},
	OpAddScreen: func(s document.State, op Operation) (document.State, error) {
		if op.Screen == nil {
			return s, errors.NewValidationError("screen", "screen is required")
		}
		screen := op.Screen
		if screen.Components == nil {
			cp := *screen
			cp.Components = []*models.Component{}
			screen = &cp
		}
		return document.AddScreen(s, screen)
	},
	OpUpdateScreen: func(s document.State, op Operation) (document.State, error) {
		if op.ScreenPatch == nil {
			return s, errors.NewValidationError("screenPatch", "screenPatch is required")
		}
		return document.UpdateScreen(s, op.ScreenID, *op.ScreenPatch)
	},
	OpDeleteScreen: func(s document.State, op Operation) (document.State, error) {
		return document.DeleteScreen(s, op.ScreenID)
	},
	OpAddDatabase: func(s document.State, op Operation) (document.State, error) {
		return document.AddDatabase(s, op.Database)
	},
	OpUpdateDatabase: func(s document.State, op Operation) (document.State, error) {
		if op.DatabasePatch == nil {
			return s, errors.NewValidationError("databasePatch", "databasePatch is required")
		}
		return document.UpdateDatabase(s, op.DatabaseID, *op.DatabasePatch)
	},
	OpDeleteDatabase: func(s document.State, op Operation) (document.State, error) {
		return document.DeleteDatabase(s, op.DatabaseID)
	},
	OpAddField: func(s document.State, op Operation) (document.State, error) {
		if op.Field == nil {
			return s, errors.NewValidationError("field", "field is required")
		}
		return document.AddField(s, op.DatabaseID, *op.Field)
	},
	OpSaveRecord: func(s document.State, op Operation) (document.State, error) {
		next, _, err := document.SaveRecord(s, op.DatabaseID, op.Data)
		return next, err
	},
	OpDeleteRecord: func(s document.State, op Operation) (document.State, error) {
		return document.DeleteRecord(s, op.DatabaseID, op.RecordID)
	},
	OpSelectComponent: func(s document.State, op Operation) (document.State, error) {
		return document.SelectComponent(s, op.ComponentID), nil
	},
	OpSelectScreen: func(s document.State, op Operation) (document.State, error) {
		return document.SelectScreen(s, op.ScreenID), nil
	},
	OpNavigate: func(s document.State, op Operation) (document.State, error) {
		return document.Navigate(s, op.ScreenID), nil
	},
	OpSetCanvasSize: func(s document.State, op Operation) (document.State, error) {
		return document.SetCanvasSize(s, op.CanvasSize)
	},
	OpTogglePreview: func(s document.State, _ Operation) (document.State, error) {
		return document.TogglePreview(s), nil
	},
}

// applyOperation dispatches op to its mutation
func applyOperation(s document.State, op Operation) (document.State, error) {
	fn, ok := operations[op.Type]
	if !ok {
		return s, errors.NewValidationError("type", "unknown operation '"+string(op.Type)+"'")
	}
	return fn(s, op)
}

// OperationTypes lists the accepted operation names, sorted
func OperationTypes() []string {
	types := make([]string, 0, len(operations))
	for t := range operations {
		types = append(types, string(t))
	}
	sort.Strings(types)
	return types
}
