//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2025 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package maintenance

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/weaviate/stratum/entities/bucket"
)

const (
	defaultDocsToMovePerTick     = 32
	defaultMaxOutstandingMoveOps = 100
	defaultScanInterval          = time.Second
)

// Config tunes the bucket move job. The zero value is completed with
// defaults by Validate.
type Config struct {
	// DocsToMovePerTick bounds how many documents one cycle may relocate.
	DocsToMovePerTick int
	// MaxOutstandingMoveOps caps move operations handed to the handler but
	// not yet durably applied, across all movers.
	MaxOutstandingMoveOps int
	// ScanInterval is the cycle cadence when the job is driven by a
	// cyclemanager ticker.
	ScanInterval time.Duration
	// StartBucket resumes a scan mid-index; the second pass wraps around to
	// cover the remainder before it. Zero starts at the beginning.
	StartBucket bucket.ID
}

func (c *Config) Validate() error {
	if c.DocsToMovePerTick == 0 {
		c.DocsToMovePerTick = defaultDocsToMovePerTick
	}
	if c.MaxOutstandingMoveOps == 0 {
		c.MaxOutstandingMoveOps = defaultMaxOutstandingMoveOps
	}
	if c.ScanInterval == 0 {
		c.ScanInterval = defaultScanInterval
	}
	if c.DocsToMovePerTick < 0 {
		return errors.Errorf("maintenance: docs to move per tick must be positive, got %d", c.DocsToMovePerTick)
	}
	if c.MaxOutstandingMoveOps < 0 {
		return errors.Errorf("maintenance: max outstanding move ops must be positive, got %d", c.MaxOutstandingMoveOps)
	}
	return nil
}

// ConfigFromEnv builds a config from the MAINTENANCE_* environment
// variables, falling back to defaults for unset ones.
func ConfigFromEnv() (Config, error) {
	var c Config
	var err error

	c.DocsToMovePerTick, err = optParseInt(
		os.Getenv("MAINTENANCE_DOCS_TO_MOVE_PER_TICK"), defaultDocsToMovePerTick)
	if err != nil {
		return c, err
	}

	c.MaxOutstandingMoveOps, err = optParseInt(
		os.Getenv("MAINTENANCE_MAX_OUTSTANDING_MOVE_OPS"), defaultMaxOutstandingMoveOps)
	if err != nil {
		return c, err
	}

	c.ScanInterval, err = optParseDuration(
		os.Getenv("MAINTENANCE_SCAN_INTERVAL"), defaultScanInterval)
	if err != nil {
		return c, err
	}

	return c, c.Validate()
}

func optParseInt(s string, defaultInt int) (int, error) {
	if s == "" {
		return defaultInt, nil
	}
	return strconv.Atoi(s)
}

func optParseDuration(s string, defaultDuration time.Duration) (time.Duration, error) {
	if s == "" {
		return defaultDuration, nil
	}
	return time.ParseDuration(s)
}
