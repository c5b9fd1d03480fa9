package types

// ConsoleInterface defines terminal output for the dashboard.
type ConsoleInterface interface {
	Print(a ...interface{})
	Printf(format string, a ...interface{})
	Println(a ...interface{})

	LogInfo(format string, a ...interface{})
	LogWarning(format string, a ...interface{})
	LogError(format string, a ...interface{})
	LogSuccess(format string, a ...interface{})

	Status(message string) StatusHandle
	ProgressWithTotal(total int, title string) ProgressHandle

	CreateTable() TableInterface
	DisplayTotalBars(title string, bars []TotalBar)
}

// StatusHandle updates a status message.
type StatusHandle interface {
	Update(message string)
	Stop()
}

// ProgressHandle advances a progress bar.
type ProgressHandle interface {
	Increment()
	Stop()
}

// TableInterface builds and renders a table.
type TableInterface interface {
	AddColumn(name string, options ...interface{})
	AddRow(cells ...interface{})
	Render() string
}

// TotalBar is one bar of the grand-total chart: the planned PE of a bucket
// compared with its reference (B0) amount.
type TotalBar struct {
	Label     string  `json:"label"`
	Amount    float64 `json:"amount"`
	Reference float64 `json:"reference"`
}
