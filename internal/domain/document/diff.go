package document

import (
	"github.com/samber/lo"

	"github.com/appcanvas/builder/internal/domain/models"
)

// Changes describes how next differs from a baseline state. Because the
// store never mutates in place, pointer inequality means "changed".
type Changes struct {
	ChangedScreens     []*models.Screen
	RemovedScreenIDs   []string
	ChangedDatabases   []*models.Database
	RemovedDatabaseIDs []string
}

// Empty reports whether there is nothing to save
func (c Changes) Empty() bool {
	return len(c.ChangedScreens) == 0 && len(c.RemovedScreenIDs) == 0 &&
		len(c.ChangedDatabases) == 0 && len(c.RemovedDatabaseIDs) == 0
}

// Diff compares the persisted parts of two states
func Diff(prev, next State) Changes {
	prevScreens := lo.KeyBy(prev.Screens, func(sc *models.Screen) string { return sc.ID })
	nextScreens := lo.KeyBy(next.Screens, func(sc *models.Screen) string { return sc.ID })
	prevDBs := lo.KeyBy(prev.Databases, func(db *models.Database) string { return db.ID })
	nextDBs := lo.KeyBy(next.Databases, func(db *models.Database) string { return db.ID })

	return Changes{
		ChangedScreens: lo.Filter(next.Screens, func(sc *models.Screen, _ int) bool {
			return prevScreens[sc.ID] != sc
		}),
		RemovedScreenIDs: lo.FilterMap(prev.Screens, func(sc *models.Screen, _ int) (string, bool) {
			_, ok := nextScreens[sc.ID]
			return sc.ID, !ok
		}),
		ChangedDatabases: lo.Filter(next.Databases, func(db *models.Database, _ int) bool {
			return prevDBs[db.ID] != db
		}),
		RemovedDatabaseIDs: lo.FilterMap(prev.Databases, func(db *models.Database, _ int) (string, bool) {
			_, ok := nextDBs[db.ID]
			return db.ID, !ok
		}),
	}
}
