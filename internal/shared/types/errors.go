package types

import "errors"

var (
	ErrNoInputSource     = errors.New("no input source given. Use --input or set 'input' in the config file")
	ErrUnsupportedSource = errors.New("unsupported input source")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrUnknownCompany    = errors.New("unknown company profile")
	ErrEmptyDataset      = errors.New("the input source returned no rows")
	ErrUnknownReportType = errors.New("unknown report type")
)
