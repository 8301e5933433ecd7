// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backup runs the Suwatte to Aidoku conversion: parse, map, validate,
// aggregate, assemble, and encode. It performs no I/O; callers hand it raw
// bytes and receive encoded bytes plus a structured log.
package backup

import (
	"time"

	"github.com/pdiddy/mangabridge/internal/bplist"
	"github.com/pdiddy/mangabridge/internal/dates"
	"github.com/pdiddy/mangabridge/internal/mapping"
	"github.com/pdiddy/mangabridge/internal/suwatte"
	"github.com/pdiddy/mangabridge/pkg/types"
)

const (
	filePrefix = "Aidoku-"
	// FileExt is the extension Aidoku expects for backups.
	FileExt = ".aib"
)

// Options configures a Pipeline. The zero value uses the wall clock, epoch
// millisecond timestamps, and second-precision dates.
type Options struct {
	// Now is the clock used for the creation stamp, the output file name, and
	// date fallbacks.
	Now func() time.Time

	// NativeDates writes timestamps as plist dates.
	NativeDates bool

	// DateFormat is applied to dates before encoding; nil means
	// bplist.TruncateToSecond.
	DateFormat func(time.Time) time.Time
}

// Pipeline converts one backup per Run call. It keeps no state between runs,
// so one Pipeline may serve concurrent callers.
type Pipeline struct {
	opts Options
}

// New returns a Pipeline with opts.
func New(opts Options) *Pipeline {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{opts: opts}
}

// Result is the outcome of a conversion.
type Result struct {
	// Backup is the assembled document; nil on failure.
	Backup *types.AidokuBackup

	// Data is the encoded document; nil on failure.
	Data []byte

	// FileName is the conventional output name, Aidoku-YYYY-MM-DD.aib.
	FileName string

	// Shape is the detected source shape.
	Shape suwatte.Shape

	// Log holds progress lines, warnings, and the fatal error if any.
	Log types.Log
}

// OK reports whether the conversion produced output.
func (r *Result) OK() bool { return r != nil && r.Data != nil }

// Warnings returns the number of warn-level log entries.
func (r *Result) Warnings() int { return len(r.Log.Warnings()) }

// Run converts raw. The returned Result is never nil; on error its Log ends
// with the fatal error and Data is nil. Errors are *suwatte.ParseError,
// *ValidationError, or a bplist encoding error.
func (p *Pipeline) Run(raw []byte) (*Result, error) {
	now := p.opts.Now()
	res := &Result{}

	res.Log.Infof("Reading backup file...")
	doc, err := suwatte.Parse(raw)
	if err != nil {
		return res, fail(res, types.CodeParse, err)
	}
	suwatte.Summary(doc, &res.Log)

	mapper := mapping.New(suwatte.DetectShape(doc), dates.New(p.opts.Now))
	res.Shape = mapper.Shape()
	ents, diags := mapper.Map(doc)
	res.Log.Append(diags...)

	if err := Validate(ents); err != nil {
		return res, fail(res, types.CodeValidation, err)
	}

	sets := Aggregate(ents.Library, ents.Manga)
	target := Assemble(ents, sets, now)

	data, err := bplist.Marshal(target,
		bplist.WithNativeDates(p.opts.NativeDates),
		bplist.WithDateFormat(p.opts.DateFormat),
	)
	if err != nil {
		return res, fail(res, types.CodeEncode, err)
	}

	res.Backup = target
	res.Data = data
	res.FileName = FileName(now)

	c := target.Counts()
	res.Log.Infof("Successfully converted to Aidoku format")
	res.Log.Infof("  Library entries: %d", c.Library)
	res.Log.Infof("  Manga entries: %d", c.Manga)
	res.Log.Infof("  Chapters: %d", c.Chapters)
	res.Log.Infof("  History entries: %d", c.History)
	res.Log.Infof("  Sources: %d", c.Sources)
	res.Log.Infof("  Categories: %d", c.Categories)
	if w := res.Warnings(); w > 0 {
		res.Log.Infof("  Warnings: %d", w)
	}
	res.Log.Infof("Conversion successful.")
	res.Log.Infof("  Your new backup name is: %s", res.FileName)
	return res, nil
}

// FileName returns the output name for a run started now.
func (p *Pipeline) FileName() string {
	return FileName(p.opts.Now())
}

// FileName returns the output name for a conversion at t.
func FileName(t time.Time) string {
	return filePrefix + dates.DateString(t) + FileExt
}

func fail(res *Result, code string, err error) error {
	res.Log.Errorf(code, "%v", err)
	return err
}
