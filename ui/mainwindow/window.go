// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"region-annotator/internal/app"
	"region-annotator/internal/image"
	"region-annotator/internal/region"
	"region-annotator/internal/tags"
	"region-annotator/internal/version"
	"region-annotator/pkg/geometry"
	"region-annotator/ui/canvas"
	"region-annotator/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const (
	appTitle        = "Region Annotator"
	prefKeyLastDir  = "lastDirectory"
	projectExt      = ".json"
	tagsPollPeriod  = 2 * time.Second
	defaultRegionXY = 50
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	canvas    *canvas.ImageCanvas
	list      *widget.List
	statusBar *widget.Label

	// regions mirrors the canvas regions. It is only changed from UI
	// callbacks, which the driver runs one at a time.
	regions []*region.Region
	watcher *app.FileWatcher

	// Menu items that need state tracking
	backgroundItem *fyne.MenuItem
	mainMenu       *fyne.MainMenu
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.watchTags()

	win.SetOnClosed(mw.onClosed)
	win.Resize(fyne.NewSize(1100, 750))
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	// Create the image canvas
	mw.canvas = canvas.NewImageCanvas()
	mw.canvas.SetZoom(mw.prefs.Zoom())
	mw.canvas.OnZoomChange(func(zoom float64) {
		mw.prefs.SetFloat(prefs.KeyZoom, zoom)
	})
	mw.canvas.OnRegionChange(mw.onRegionChange)
	mw.canvas.OnManipulation(func(r *region.Region, active bool) {
		if active {
			mw.updateStatus(fmt.Sprintf("%s: %s", r.ID, describe(r)))
		}
	})
	if mw.state.Image != nil {
		mw.canvas.SetLayer(mw.state.Image)
	}

	mw.list = widget.NewList(
		func() int { return len(mw.state.Annotations()) },
		func() fyne.CanvasObject { return widget.NewLabel("annotation") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			all := mw.state.Annotations()
			if id >= len(all) {
				return
			}
			obj.(*widget.Label).SetText(annotationLabel(all[id]))
		},
	)
	mw.list.OnSelected = mw.onListSelected

	// Create status bar
	mw.statusBar = widget.NewLabel("Ready")

	// Create toolbar with zoom controls
	toolbar := mw.createToolbar()

	// Canvas area with toolbar on top
	canvasArea := container.NewBorder(
		toolbar,               // top
		nil,                   // bottom
		nil,                   // left
		nil,                   // right
		mw.canvas.Container(), // center
	)

	// Create main layout: region list | canvas area
	split := container.NewHSplit(mw.list, canvasArea)
	split.SetOffset(0.2)

	// Main container with status bar at bottom
	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)

	mw.SetContent(content)
}

// createToolbar creates the toolbar with zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		widget.NewButton("-", mw.canvas.ZoomOut),
		widget.NewButton("+", mw.canvas.ZoomIn),
		widget.NewButton("1:1", func() { mw.canvas.SetZoom(1.0) }),
		widget.NewSeparator(),
		widget.NewButton("Add Region", mw.onAddRegion),
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	// File menu
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		fyne.NewMenuItem("Open Image...", mw.onOpenImage),
		fyne.NewMenuItem("Open Tags...", mw.onOpenTags),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Project", mw.onSaveProject),
		fyne.NewMenuItem("Save Project As...", mw.onSaveProjectAs),
	)

	// Regions menu
	mw.backgroundItem = fyne.NewMenuItem("Tag Background", mw.onToggleBackground)
	mw.backgroundItem.Checked = mw.prefs.ShowBackground()

	regionsMenu := fyne.NewMenu("Regions",
		fyne.NewMenuItem("Add Region", mw.onAddRegion),
		fyne.NewMenuItem("Delete Selected", mw.onDeleteSelected),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Freeze All", func() { mw.setFrozen(true) }),
		fyne.NewMenuItem("Unfreeze All", func() { mw.setFrozen(false) }),
		fyne.NewMenuItemSeparator(),
		mw.backgroundItem,
	)

	// View menu
	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Actual Size", func() { mw.canvas.SetZoom(1.0) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Show Image", mw.onToggleImage),
	)

	// Help menu
	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.mainMenu = fyne.NewMainMenu(fileMenu, regionsMenu, viewMenu, helpMenu)
	mw.SetMainMenu(mw.mainMenu)
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventProjectLoaded, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle(appTitle + " - " + filepath.Base(path))
			mw.updateStatus("Project loaded: " + path)
		}
		mw.rebuildRegions()
	})

	mw.state.On(app.EventProjectSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle(appTitle + " - " + filepath.Base(path))
			mw.updateStatus("Project saved: " + path)
		}
	})

	mw.state.On(app.EventImageLoaded, func(data interface{}) {
		if layer, ok := data.(*image.Layer); ok {
			mw.canvas.SetLayer(layer)
			mw.updateStatus("Image loaded: " + layer.Path)
		}
	})

	mw.state.On(app.EventTagsLoaded, func(data interface{}) {
		mw.applyTags()
		mw.watchTags()
		mw.updateStatus("Tags loaded: " + mw.state.TagsPath)
	})

	mw.state.On(app.EventAnnotationsChanged, func(data interface{}) {
		mw.list.Refresh()
	})

	mw.state.On(app.EventModified, func(data interface{}) {
		if modified, ok := data.(bool); ok && modified {
			title := mw.Title()
			if len(title) > 0 && title[len(title)-1] != '*' {
				mw.SetTitle(title + " *")
			}
		}
	})
}

// Open loads a project file, or a background image for any other extension.
func (mw *MainWindow) Open(path string) error {
	if strings.EqualFold(filepath.Ext(path), projectExt) {
		return mw.state.LoadProject(path)
	}
	return mw.state.LoadImage(path)
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) tagOptions() *tags.UpdateOptions {
	return &tags.UpdateOptions{ShowRegionBackground: mw.prefs.ShowBackground()}
}

// addRegion shows an annotation on the canvas.
func (mw *MainWindow) addRegion(a *app.Annotation) {
	d, err := mw.state.Descriptor(a)
	if err != nil {
		log.Printf("regions: %v", err)
	}
	r, err := mw.canvas.AddRegion(a.Points, a.ID, d, mw.tagOptions())
	if err != nil {
		log.Printf("regions: %v", err)
		return
	}
	mw.regions = append(mw.regions, r)
}

// rebuildRegions replaces the canvas regions with the project's annotations.
func (mw *MainWindow) rebuildRegions() {
	for _, r := range mw.regions {
		mw.canvas.RemoveRegion(r)
	}
	mw.regions = nil
	for _, a := range mw.state.Annotations() {
		mw.addRegion(a)
	}
	mw.list.UnselectAll()
	mw.list.Refresh()
}

// applyTags re-resolves every region's tags against the current catalogue.
func (mw *MainWindow) applyTags() {
	opts := mw.tagOptions()
	mw.canvas.Do(func(regions []*region.Region) {
		for _, r := range regions {
			a, ok := mw.state.Annotation(r.ID)
			if !ok {
				continue
			}
			d, err := mw.state.Descriptor(a)
			if err != nil {
				log.Printf("regions: %v", err)
			}
			r.UpdateTags(d, opts)
		}
	})
}

// watchTags reloads the tag catalogue when its file changes on disk.
func (mw *MainWindow) watchTags() {
	path := mw.state.TagsPath
	if mw.watcher != nil {
		if mw.watcher.Path() == path {
			return
		}
		mw.watcher.Stop()
		mw.watcher = nil
	}
	if path == "" {
		return
	}

	mw.watcher = app.NewFileWatcher(path, tagsPollPeriod)
	if mw.watcher == nil {
		log.Printf("tags: unable to watch %s", path)
		return
	}
	mw.watcher.OnChange(func(p string) {
		log.Printf("tags: %s changed, reloading", p)
		if err := mw.state.LoadTags(p); err != nil {
			log.Printf("tags: reload failed: %v", err)
		}
	})
	mw.watcher.Start()
}

// onRegionChange applies the selection policy and records finished moves.
// It runs with the canvas locked.
func (mw *MainWindow) onRegionChange(r *region.Region, event region.ChangeEventType, multi bool) {
	switch event {
	case region.SelectionToggle:
		app.ToggleSelection(mw.regions, r, multi)
		mw.state.Emit(app.EventSelectionChanged, app.Selected(mw.regions))
		mw.updateStatus(fmt.Sprintf("%d selected", len(app.Selected(mw.regions))))
	case region.MoveEnd:
		if err := mw.state.MoveAnnotation(r.ID, r.Points()); err != nil {
			log.Printf("regions: %v", err)
		}
	}
}

func (mw *MainWindow) onListSelected(id widget.ListItemID) {
	all := mw.state.Annotations()
	if id >= len(all) {
		return
	}
	target := all[id].ID
	mw.canvas.Do(func(regions []*region.Region) {
		for _, r := range regions {
			if r.ID == target {
				app.ToggleSelection(regions, r, false)
				return
			}
		}
	})
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.app.Preferences().String(prefKeyLastDir)
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	dir := filepath.Dir(filePath)
	mw.app.Preferences().SetString(prefKeyLastDir, dir)
}

// openFile shows a file open dialog filtered to exts and passes the chosen
// path to load.
func (mw *MainWindow) openFile(exts []string, load func(path string) error) {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := load(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(exts))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// Menu action handlers

func (mw *MainWindow) onOpenProject() {
	mw.openFile([]string{projectExt}, mw.state.LoadProject)
}

func (mw *MainWindow) onOpenImage() {
	mw.openFile([]string{".tiff", ".tif", ".png", ".jpg", ".jpeg"}, mw.state.LoadImage)
}

func (mw *MainWindow) onOpenTags() {
	mw.openFile([]string{".yaml", ".yml", ".json"}, func(path string) error {
		if err := mw.state.LoadTags(path); err != nil {
			return err
		}
		mw.prefs.SetString(prefs.KeyTagsFile, path)
		return nil
	})
}

func (mw *MainWindow) onSaveProject() {
	if mw.state.ProjectPath == "" {
		mw.onSaveProjectAs()
		return
	}
	if err := mw.state.SaveProject(mw.state.ProjectPath); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveProjectAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != projectExt {
			path += projectExt
		}
		mw.saveLastDir(path)
		if err := mw.state.SaveProject(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFileName("annotations" + projectExt)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// onAddRegion adds a region at the image centre tagged with the first
// catalogue tag.
func (mw *MainWindow) onAddRegion() {
	at := geometry.NewPoint2D(defaultRegionXY, defaultRegionXY)
	if layer := mw.canvas.Layer(); layer != nil && layer.Image != nil {
		at = layer.Bounds().Center()
	}

	a := &app.Annotation{
		ID:     mw.nextID(),
		Points: []geometry.Point2D{at},
	}
	if c := mw.state.Catalogue; c != nil && len(c.Tags) > 0 {
		a.Primary = c.Tags[0].Name
	}
	mw.state.AddAnnotation(a)
	mw.addRegion(a)
}

// nextID returns the first unused annotation ID of the form rN.
func (mw *MainWindow) nextID() string {
	for n := len(mw.state.Annotations()) + 1; ; n++ {
		id := fmt.Sprintf("r%d", n)
		if _, taken := mw.state.Annotation(id); !taken {
			return id
		}
	}
}

func (mw *MainWindow) onDeleteSelected() {
	var kept []*region.Region
	for _, r := range mw.regions {
		if !r.IsSelected() {
			kept = append(kept, r)
			continue
		}
		mw.canvas.RemoveRegion(r)
		mw.state.RemoveAnnotation(r.ID)
	}
	mw.regions = kept
	mw.list.UnselectAll()
}

func (mw *MainWindow) setFrozen(frozen bool) {
	mw.canvas.Do(func(regions []*region.Region) {
		for _, r := range regions {
			if frozen {
				r.Freeze()
			} else {
				r.Unfreeze()
			}
		}
	})
}

func (mw *MainWindow) onToggleBackground() {
	show := !mw.prefs.ShowBackground()
	mw.prefs.SetBool(prefs.KeyShowBackground, show)
	mw.backgroundItem.Checked = show
	mw.mainMenu.Refresh()
	mw.applyTags()
}

func (mw *MainWindow) onToggleImage() {
	if layer := mw.canvas.Layer(); layer != nil {
		layer.Visible = !layer.Visible
		mw.canvas.Refresh()
	}
}

func (mw *MainWindow) onClosed() {
	if mw.watcher != nil {
		mw.watcher.Stop()
	}
	if err := mw.prefs.Save(); err != nil {
		log.Printf("Failed to save preferences: %v", err)
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"Point annotation of images with colored tags.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}

// describe returns the status text for a region.
func describe(r *region.Region) string {
	if tip := r.Tooltip(); tip != "" {
		return tip
	}
	return "untagged"
}

// annotationLabel returns the list text for an annotation.
func annotationLabel(a *app.Annotation) string {
	names := a.Secondary
	if a.Primary != "" {
		names = append([]string{a.Primary}, names...)
	}
	label := a.ID
	if len(names) > 0 {
		label += ": " + strings.Join(names, ", ")
	}
	if len(a.Points) > 0 {
		label += fmt.Sprintf(" (%.0f, %.0f)", a.Points[0].X, a.Points[0].Y)
	}
	return label
}
