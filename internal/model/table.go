package model

import "time"

// TableStatus is the occupancy state of a dining table.
type TableStatus string

const (
	TableVacant       TableStatus = "VACANT"
	TableOccupied     TableStatus = "OCCUPIED"
	TableReserved     TableStatus = "RESERVED"
	TableOrderPending TableStatus = "ORDER_PENDING"
)

// Valid reports whether s is one of the known table statuses.
func (s TableStatus) Valid() bool {
	switch s {
	case TableVacant, TableOccupied, TableReserved, TableOrderPending:
		return true
	}
	return false
}

// Table represents a physical table on the floor.  Tables are created at
// setup time and never deleted during service.  Merged tables form a
// shallow star: a satellite points at its primary through MergedWithID and
// a primary never points anywhere.
//
// Fields:
//  ID           – primary key identifier.
//  Label        – floor label printed on the table (e.g. "T4").
//  Capacity     – seats at this table alone.
//  Status       – occupancy status.
//  MergedWithID – primary table this one is merged into (nil when free).
//  UpdatedAt    – last update timestamp.
type Table struct {
	ID           uint64      `json:"id"`             // tables.id
	Label        string      `json:"label"`          // tables.label
	Capacity     int         `json:"capacity"`       // tables.capacity
	Status       TableStatus `json:"status"`         // tables.status
	MergedWithID *uint64     `json:"merged_with_id"` // tables.merged_with_id (nullable)
	UpdatedAt    time.Time   `json:"updated_at"`     // tables.updated_at
}

// IsSatellite reports whether the table is merged into another table.
func (t Table) IsSatellite() bool { return t.MergedWithID != nil }

// TableView is a table together with the satellites currently merged into
// it.  EffectiveCapacity is always derived from Satellites and never stored.
type TableView struct {
	Table
	Satellites        []Table `json:"satellites"`
	EffectiveCapacity int     `json:"effective_capacity"`
}

// NewTableView builds a view and computes the effective capacity.
func NewTableView(t Table, satellites []Table) TableView {
	capacity := t.Capacity
	for _, s := range satellites {
		capacity += s.Capacity
	}
	if satellites == nil {
		satellites = []Table{}
	}
	return TableView{Table: t, Satellites: satellites, EffectiveCapacity: capacity}
}
