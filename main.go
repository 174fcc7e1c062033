// Package main provides the entry point for the Region Annotator application.
package main

import (
	"log"
	"os"

	"region-annotator/internal/app"
	"region-annotator/internal/version"
	"region-annotator/ui/mainwindow"
	"region-annotator/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

const appID = "io.github.region-annotator"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting Region Annotator %s", version.String())

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.AnnotatorTheme{})

	appState := app.NewState()
	appPrefs := prefs.Load()

	if path := appPrefs.TagsFile(); path != "" {
		if err := appState.LoadTags(path); err != nil {
			log.Printf("Failed to load tags %s: %v", path, err)
		}
	}

	win := mainwindow.New(fyneApp, appState, appPrefs)

	// Handle command line arguments: a project file or a background image
	if len(os.Args) > 1 {
		path := os.Args[1]
		if err := win.Open(path); err != nil {
			log.Printf("Failed to open %s: %v", path, err)
		}
	}

	win.ShowAndRun()
}
