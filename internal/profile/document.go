package profile

import (
	"go.uber.org/zap"

	"github.com/KaramelBytes/dagloom-cli/internal/dataset"
	"github.com/KaramelBytes/dagloom-cli/internal/utils"
)

// DatasetInfo summarizes the shape and missingness of the whole dataset.
type DatasetInfo struct {
	Rows              int     `json:"rows"`
	Columns           int     `json:"columns"`
	TotalCells        int     `json:"total_cells"`
	MissingCells      int     `json:"missing_cells"`
	MissingPercentage float64 `json:"missing_percentage"`
}

// Document is the serializable profile of a dataset.
type Document struct {
	RunID              string             `json:"run_id,omitempty"`
	ColumnDescriptions map[string]Profile `json:"column_descriptions"`
	DatasetInfo        DatasetInfo        `json:"dataset_info"`
	DataTypesSummary   map[Type]int       `json:"data_types_summary"`
	Errors             []string           `json:"errors,omitempty"`
}

// NewDocument combines a profiling result with dataset-level counts.
func NewDocument(ds *dataset.Dataset, res *Result) *Document {
	doc := &Document{
		ColumnDescriptions: res.Profiles,
		DataTypesSummary:   map[Type]int{},
		Errors:             res.Errors,
	}
	for _, name := range res.Columns {
		doc.DataTypesSummary[res.Profiles[name].Kind()]++
	}
	info := DatasetInfo{
		Rows:         ds.Rows(),
		Columns:      len(ds.Columns),
		TotalCells:   ds.Rows() * len(ds.Columns),
		MissingCells: ds.MissingCells(),
	}
	if info.TotalCells > 0 {
		info.MissingPercentage = float64(info.MissingCells) / float64(info.TotalCells) * 100
	}
	doc.DatasetInfo = info
	return doc
}

// JSON renders the document with two-space indentation.
func (d *Document) JSON() ([]byte, error) {
	return utils.PrettyJSON(d)
}

// Save writes the document to path and reports whether it succeeded. Failures are logged,
// never returned.
func (d *Document) Save(path string, logger *zap.Logger) bool {
	if logger == nil {
		logger = zap.NewNop()
	}
	b, err := d.JSON()
	if err == nil {
		err = utils.SafeWriteFile(path, b)
	}
	if err != nil {
		logger.Warn("saving profile failed", zap.String("path", path), zap.Error(err))
		return false
	}
	logger.Debug("profile saved", zap.String("path", path))
	return true
}
