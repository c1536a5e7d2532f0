package convert

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/ctm/moves-still-count/log"
)

// ConvertFile converts the export at path. Records logged meanwhile
// carry the input path.
func (c *Converter) ConvertFile(path string) (Result, error) {
	logger := c.logger
	c.logger = logger.With(log.String("input", path))
	defer func() { c.logger = logger }()

	f, err := c.fs.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	start := time.Now()
	res, err := c.Convert(f)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	c.logger.Info("converted",
		log.String("output", res.Path),
		log.Int("points", res.Points),
		log.Int("suppressed", res.Suppressed),
		log.Int("dropped", res.Dropped),
		log.Duration("took", time.Since(start)),
	)
	return res, nil
}

// ConvertFiles converts paths in order, each path once. The first failure
// stops the batch unless the Converter keeps going, in which case every
// failure is returned combined.
func (c *Converter) ConvertFiles(paths []string) ([]Result, error) {
	var (
		results []Result
		errs    error
	)
	for _, path := range lo.Uniq(paths) {
		res, err := c.ConvertFile(path)
		if err != nil {
			if !c.keepGoing {
				return results, err
			}
			errs = multierr.Append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errs
}
