package engine

import (
	"github.com/sirupsen/logrus"
)

// Observer receives notifications about board activity. Implementations must
// not call back into the board.
type Observer interface {
	BoardCreated(size int)
	Placed(p Placement, emptyCells int)
	Rejected(start, end int, reason error)
	Terminal(victory bool, emptyCells int)
}

// NopObserver discards every notification
type NopObserver struct{}

func (NopObserver) BoardCreated(int)         {}
func (NopObserver) Placed(Placement, int)    {}
func (NopObserver) Rejected(int, int, error) {}
func (NopObserver) Terminal(bool, int)       {}

// LogObserver writes board activity to a logrus logger
type LogObserver struct {
	Logger logrus.FieldLogger
}

// NewLogObserver creates an observer writing to logger, or to the standard logrus logger when nil
func NewLogObserver(logger logrus.FieldLogger) *LogObserver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogObserver{Logger: logger}
}

func (o *LogObserver) BoardCreated(size int) {
	o.Logger.WithField("size", size).Debug("board created")
}

func (o *LogObserver) Placed(p Placement, emptyCells int) {
	o.Logger.WithFields(logrus.Fields{
		"orientation": p.Orientation,
		"row":         p.Center.Row,
		"col":         p.Center.Col,
		"empty_cells": emptyCells,
	}).Debug("domino placed")
}

func (o *LogObserver) Rejected(start, end int, reason error) {
	o.Logger.WithFields(logrus.Fields{
		"start":  start,
		"end":    end,
		"reason": reason,
	}).Debug("placement rejected")
}

func (o *LogObserver) Terminal(victory bool, emptyCells int) {
	o.Logger.WithFields(logrus.Fields{
		"victory":     victory,
		"empty_cells": emptyCells,
	}).Info("game over")
}
