// Package datasource loads fund-trail graphs and hold rows from the places a
// case can live: the remote fund-trail server, a local case database, or a
// saved graph document on disk. It also persists KYC records where the
// source allows it.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/fundtrail/pkg/debug"
	"github.com/vanderheijden86/fundtrail/pkg/model"
	"github.com/vanderheijden86/fundtrail/pkg/trail"
)

// Source is where graph documents, hold rows and KYC records come from.
type Source interface {
	// Graph returns the document for ack. Data-absent answers are
	// *NoDataError.
	Graph(ctx context.Context, ack string) (*trail.Document, error)
	// Holds returns the put-on-hold rows for ack, possibly none.
	Holds(ctx context.Context, ack string) ([]model.HoldRow, error)
	// SaveKYC stores a KYC record keyed by transaction id.
	SaveKYC(ctx context.Context, req model.KYCUpdate) error
	Close() error
}

// SourceType identifies the kind of data source.
type SourceType string

const (
	SourceTypeHTTP   SourceType = "http"
	SourceTypeSQLite SourceType = "sqlite"
	SourceTypeFile   SourceType = "file"
)

// DataSource describes a source before it is opened.
type DataSource struct {
	Type SourceType
	// Location is a base URL or a file path.
	Location string
	// HoldsPath is an optional hold-rows JSON file for file sources.
	HoldsPath string
}

func (s DataSource) String() string {
	return fmt.Sprintf("%s (%s)", s.Location, s.Type)
}

// Detect guesses the source type from a location: URLs are servers, .db,
// .sqlite and .sqlite3 files are case databases, anything else is a graph
// document.
func Detect(location string) DataSource {
	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return DataSource{Type: SourceTypeHTTP, Location: location}
	}
	switch strings.ToLower(filepath.Ext(location)) {
	case ".db", ".sqlite", ".sqlite3":
		return DataSource{Type: SourceTypeSQLite, Location: location}
	}
	return DataSource{Type: SourceTypeFile, Location: location}
}

// Open opens the described source.
func Open(ds DataSource, opts ...HTTPOption) (Source, error) {
	switch ds.Type {
	case SourceTypeHTTP:
		return NewHTTPSource(ds.Location, opts...), nil
	case SourceTypeSQLite:
		return OpenSQLite(ds.Location)
	case SourceTypeFile:
		return NewFileSource(ds.Location, ds.HoldsPath), nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", ds.Type)
	}
}

// checkDocument turns server-side and structural absence into NoDataError.
func checkDocument(doc *trail.Document) (*trail.Document, error) {
	if doc.Error != "" {
		return nil, &NoDataError{Message: doc.Error}
	}
	if doc.Empty() {
		return nil, &NoDataError{Message: MsgNoGraph}
	}
	return doc, nil
}

// LoadTree fetches, decodes and prepares the tree for ack.
func LoadTree(ctx context.Context, src Source, ack string, opts ...trail.Option) (*trail.Tree, error) {
	debug.Section("load " + ack)
	start := time.Now()
	doc, err := src.Graph(ctx, ack)
	if err != nil {
		return nil, err
	}
	debug.LogTiming("fetch graph", time.Since(start))

	t, err := trail.FromDocument(doc, opts...)
	if err != nil {
		if errors.Is(err, trail.ErrEmptyTrail) {
			return nil, &NoDataError{Message: MsgNoGraph}
		}
		return nil, err
	}
	return t, nil
}
