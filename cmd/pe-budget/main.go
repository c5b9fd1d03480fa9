package main

import (
	"fmt"
	"os"

	"github.com/diillson/pe-budget-dashboard-go/internal/adapter/driven/audit"
	"github.com/diillson/pe-budget-dashboard-go/internal/adapter/driven/aws"
	"github.com/diillson/pe-budget-dashboard-go/internal/adapter/driven/config"
	"github.com/diillson/pe-budget-dashboard-go/internal/adapter/driven/export"
	"github.com/diillson/pe-budget-dashboard-go/internal/adapter/driven/source"
	"github.com/diillson/pe-budget-dashboard-go/internal/adapter/driving/cli"
	"github.com/diillson/pe-budget-dashboard-go/internal/application/usecase"
	"github.com/diillson/pe-budget-dashboard-go/pkg/console"
	"github.com/diillson/pe-budget-dashboard-go/pkg/version"
)

func main() {
	app := cli.NewCLIApp(version.Version)

	// repositories
	awsRepo := aws.NewAWSRepository()
	sourceRepo := source.NewSourceRepository(awsRepo)
	exportRepo := export.NewExportRepository()
	configRepo := config.NewConfigRepository()
	auditRepo := audit.NewAuditRepository(awsRepo)
	consoleImpl := console.NewConsole()

	planningUseCase := usecase.NewPlanningUseCase(
		sourceRepo,
		exportRepo,
		configRepo,
		auditRepo,
		awsRepo,
		consoleImpl,
	)
	app.SetPlanningUseCase(planningUseCase)

	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
