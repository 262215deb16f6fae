package sample

import (
	"context"
	"fmt"
	"time"

	"ccerddap/internal/erddap"
)

// DiscoveryLookback is subtracted from a discovered latest timestamp to form
// the absolute lower bound.
const DiscoveryLookback = time.Hour

// TimeBound is the outcome of resolving a tabular dataset's time lower
// bound. It is one of Relative, DiscoveredAbsolute or Unresolvable.
type TimeBound interface {
	// Constraint renders the bound as a tabledap constraint.
	Constraint() (string, error)
	timeBound()
}

// Relative lets the server resolve max(time) itself. It is used when the
// catalog states a max time.
type Relative struct {
	Offset string
}

func (r Relative) Constraint() (string, error) {
	return "time>max(time)-" + r.Offset, nil
}

// DiscoveredAbsolute is used when the catalog has no usable max time and the
// latest timestamp had to be queried.
type DiscoveredAbsolute struct {
	Max   time.Time
	Since time.Time
}

func (a DiscoveredAbsolute) Constraint() (string, error) {
	return "time>=" + erddap.FormatTime(a.Since), nil
}

// Unresolvable means neither the catalog nor the server yielded a latest
// timestamp.
type Unresolvable struct {
	Err error
}

func (u Unresolvable) Constraint() (string, error) {
	return "", u.Err
}

func (Relative) timeBound()           {}
func (DiscoveredAbsolute) timeBound() {}
func (Unresolvable) timeBound()       {}

// LatestTimer queries a dataset's newest timestamp.
type LatestTimer interface {
	LatestTime(ctx context.Context, datasetID string) (time.Time, error)
}

// ResolveTimeBound picks the time lower bound for a tabular dataset.
func ResolveTimeBound(ctx context.Context, lt LatestTimer, d erddap.Dataset, offset string) TimeBound {
	if _, ok := d.StatedMaxTime(); ok {
		return Relative{Offset: offset}
	}

	latest, err := lt.LatestTime(ctx, d.ID)
	if err != nil {
		return Unresolvable{Err: fmt.Errorf("discover latest time: %w", err)}
	}
	return DiscoveredAbsolute{Max: latest, Since: latest.Add(-DiscoveryLookback)}
}
