package cli

import (
	"fmt"

	"github.com/diillson/pe-budget-dashboard-go/pkg/version"
	"github.com/fatih/color"
)

// displayWelcomeBanner prints the welcome banner with version information.
func displayWelcomeBanner(versionStr string) {
	banner := `
         /$$$$$$$  /$$$$$$$$       /$$$$$$$                  /$$                       /$$    
        | $$__  $$| $$_____/      | $$__  $$                | $$                      | $$    
        | $$  \ $$| $$            | $$  \ $$ /$$   /$$  /$$$$$$$  /$$$$$$   /$$$$$$  /$$$$$$  
        | $$$$$$$/| $$$$$         | $$$$$$$ | $$  | $$ /$$__  $$ /$$__  $$ /$$__  $$|_  $$_/  
        | $$____/ | $$__/         | $$__  $$| $$  | $$| $$  | $$| $$  \ $$| $$$$$$$$  | $$    
        | $$      | $$            | $$  \ $$| $$  | $$| $$  | $$| $$  | $$| $$_____/  | $$ /$$
        | $$      | $$$$$$$$      | $$$$$$$/|  $$$$$$/|  $$$$$$$|  $$$$$$$|  $$$$$$$  |  $$$$/
        |__/      |________/      |_______/  \______/  \_______/ \____  $$ \_______/   \___/  
                                                                 /$$  \ $$                    
                                                                |  $$$$$$/                    
                                                                 \______/                     
        `
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(red(banner))

	formattedVersion := version.FormatVersion()
	fmt.Println(blue(fmt.Sprintf("PE Budget Dashboard CLI (v%s)", formattedVersion)))
}
