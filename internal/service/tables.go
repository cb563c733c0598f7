package service

import (
	"context"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// MergeTables joins tables into a star: ids[0] becomes the primary and the
// rest its satellites.  All of them end up OCCUPIED.
func (s *Service) MergeTables(ctx context.Context, actor Actor, ids []uint64) (*model.TableView, error) {
	if !actor.frontOfHouse() {
		return nil, fail(Unauthorized, "role %s cannot merge tables", actor.Role)
	}
	if len(ids) < 2 {
		return nil, fail(InsufficientTables, "merging needs at least two tables, got %d", len(ids))
	}
	seen := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		if id == 0 {
			return nil, fail(InvalidInput, "invalid table id")
		}
		if seen[id] {
			return nil, fail(InvalidInput, "table %d listed twice", id)
		}
		seen[id] = true
	}

	var view *model.TableView
	err := s.run(ctx, "merge tables", func(tx repository.Tx) error {
		locked, err := tx.LockTables(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uint64]model.Table, len(locked))
		for _, t := range locked {
			byID[t.ID] = t
		}
		for _, id := range ids {
			t, ok := byID[id]
			if !ok {
				return fail(InvalidReference, "table %d not found", id)
			}
			if t.IsSatellite() {
				return fail(AlreadyMerged, "table %s is already merged into table %d", t.Label, *t.MergedWithID)
			}
		}
		primary := byID[ids[0]]
		for _, id := range ids[1:] {
			sats, err := tx.ListSatellites(ctx, id)
			if err != nil {
				return err
			}
			if len(sats) > 0 {
				return fail(AlreadyMerged, "table %s is the primary of another merge", byID[id].Label)
			}
		}
		for _, id := range ids[1:] {
			t := byID[id]
			t.MergedWithID = &primary.ID
			t.Status = model.TableOccupied
			if err := tx.UpdateTable(ctx, &t); err != nil {
				return err
			}
		}
		primary.Status = model.TableOccupied
		if err := tx.UpdateTable(ctx, &primary); err != nil {
			return err
		}
		view, err = tableView(ctx, tx, primary.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Sugar().Infow("tables merged", "primary", ids[0], "satellites", ids[1:], "staff_id", actor.StaffID)
	return view, nil
}

// UnmergeTables dissolves the merge around primaryID.  The primary and every
// satellite become VACANT with no merge link.
func (s *Service) UnmergeTables(ctx context.Context, actor Actor, primaryID uint64) (*model.TableView, error) {
	if !actor.frontOfHouse() {
		return nil, fail(Unauthorized, "role %s cannot unmerge tables", actor.Role)
	}
	var view *model.TableView
	err := s.run(ctx, "unmerge tables", func(tx repository.Tx) error {
		locked, err := tx.LockTables(ctx, []uint64{primaryID})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return fail(InvalidReference, "table %d not found", primaryID)
		}
		if locked[0].IsSatellite() {
			return fail(InvalidInput, "table %s is a satellite of table %d; unmerge the primary", locked[0].Label, *locked[0].MergedWithID)
		}
		if err := s.releaseTable(ctx, tx, primaryID); err != nil {
			return err
		}
		view, err = tableView(ctx, tx, primaryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// UpdateTableStatus writes a table status directly, for housekeeping such
// as reservations.  Merge links are not touched.
func (s *Service) UpdateTableStatus(ctx context.Context, actor Actor, tableID uint64, status model.TableStatus) (*model.TableView, error) {
	if !actor.frontOfHouse() {
		return nil, fail(Unauthorized, "role %s cannot change table status", actor.Role)
	}
	if !status.Valid() {
		return nil, fail(InvalidInput, "unknown table status %q", status)
	}
	var view *model.TableView
	err := s.run(ctx, "update table status", func(tx repository.Tx) error {
		locked, err := tx.LockTables(ctx, []uint64{tableID})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return fail(InvalidReference, "table %d not found", tableID)
		}
		t := locked[0]
		t.Status = status
		if err := tx.UpdateTable(ctx, &t); err != nil {
			return err
		}
		view, err = tableView(ctx, tx, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetTable returns a table with its satellites and effective capacity.
func (s *Service) GetTable(ctx context.Context, tableID uint64) (*model.TableView, error) {
	var view *model.TableView
	err := s.run(ctx, "get table", func(tx repository.Tx) error {
		var err error
		view, err = tableView(ctx, tx, tableID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ListTables returns every table with its satellites.  Capacities are
// computed from the current merge links on each call.
func (s *Service) ListTables(ctx context.Context) ([]model.TableView, error) {
	var views []model.TableView
	err := s.run(ctx, "list tables", func(tx repository.Tx) error {
		tables, err := tx.ListTables(ctx)
		if err != nil {
			return err
		}
		sats := map[uint64][]model.Table{}
		for _, t := range tables {
			if t.IsSatellite() {
				sats[*t.MergedWithID] = append(sats[*t.MergedWithID], t)
			}
		}
		views = make([]model.TableView, 0, len(tables))
		for _, t := range tables {
			views = append(views, model.NewTableView(t, sats[t.ID]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// occupyTable resolves the table a new order sits at.  A satellite
// redirects to its primary; the table must be VACANT or OCCUPIED and is
// left OCCUPIED.
func (s *Service) occupyTable(ctx context.Context, tx repository.Tx, tableID uint64) (model.Table, error) {
	t, err := tx.GetTable(ctx, tableID)
	if err != nil {
		return model.Table{}, missing(err, "table %d", tableID)
	}
	ids := []uint64{t.ID}
	if t.IsSatellite() {
		ids = append(ids, *t.MergedWithID)
	}
	locked, err := tx.LockTables(ctx, ids)
	if err != nil {
		return model.Table{}, err
	}
	want := t.ID
	if t.IsSatellite() {
		want = *t.MergedWithID
	}
	var target model.Table
	for _, l := range locked {
		if l.ID == want {
			target = l
		}
	}
	if target.ID == 0 {
		return model.Table{}, fail(InvalidReference, "table %d not found", want)
	}
	if target.Status != model.TableVacant && target.Status != model.TableOccupied {
		return model.Table{}, fail(InvalidInput, "table %s is %s", target.Label, target.Status)
	}
	target.Status = model.TableOccupied
	if err := tx.UpdateTable(ctx, &target); err != nil {
		return model.Table{}, err
	}
	return target, nil
}

// releaseTable sets a table VACANT, drops its own merge link and dissolves
// any merge into it.
func (s *Service) releaseTable(ctx context.Context, tx repository.Tx, tableID uint64) error {
	locked, err := tx.LockTables(ctx, []uint64{tableID})
	if err != nil {
		return err
	}
	if len(locked) == 0 {
		return fail(InvalidReference, "table %d not found", tableID)
	}
	sats, err := tx.ListSatellites(ctx, tableID)
	if err != nil {
		return err
	}
	for _, sat := range sats {
		sat.MergedWithID = nil
		sat.Status = model.TableVacant
		if err := tx.UpdateTable(ctx, &sat); err != nil {
			return err
		}
	}
	t := locked[0]
	t.MergedWithID = nil
	t.Status = model.TableVacant
	return tx.UpdateTable(ctx, &t)
}

func tableView(ctx context.Context, tx repository.Tx, tableID uint64) (*model.TableView, error) {
	t, err := tx.GetTable(ctx, tableID)
	if err != nil {
		return nil, missing(err, "table %d", tableID)
	}
	sats, err := tx.ListSatellites(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	v := model.NewTableView(t, sats)
	return &v, nil
}
