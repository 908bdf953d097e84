package project_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasmr/atelier/internal/catalog"
	"github.com/lucasmr/atelier/internal/media"
	"github.com/lucasmr/atelier/internal/platform/apperr"
	"github.com/lucasmr/atelier/internal/platform/imagery"
	"github.com/lucasmr/atelier/internal/platform/sandbox"
	"github.com/lucasmr/atelier/internal/platform/sanitize"
	"github.com/lucasmr/atelier/internal/project"
	"github.com/lucasmr/atelier/pkg/uuidv7"
)

var locales = []string{"pt", "en", "es"}

type fixture struct {
	service *project.Service
	store   *catalog.FileStore
	root    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data"), 0o755))

	box, err := sandbox.New(root)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store := catalog.NewFileStore(box, "data", locales, log)
	materializer := media.NewMaterializer(box, media.Config{
		AssetsDir:       "assets/img/portfolio",
		MaxGalleryWidth: 200,
		ThumbWidth:      40,
		ThumbHeight:     30,
		Encode:          imagery.Options{Format: imagery.JPEG, Quality: 80},
	}, log)

	service := project.NewService(store, materializer, sanitize.New(false), locales, "pt", log)
	f := &fixture{service: service, store: store, root: root}
	f.seedEmpty(t, "web")
	return f
}

// seedEmpty writes three aligned catalogs holding the given empty categories.
func (f *fixture) seedEmpty(t *testing.T, categories ...string) {
	t.Helper()
	for _, locale := range locales {
		doc := catalog.NewDocument()
		for _, category := range categories {
			doc.AddCategory(category)
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		require.NoError(t, err)
		path := filepath.Join(f.root, "data", "projects-"+locale+".json")
		require.NoError(t, os.WriteFile(path, data, 0o644))
	}
}

func (f *fixture) readAll(t *testing.T) catalog.Set {
	t.Helper()
	set, err := f.store.ReadAll(context.Background())
	require.NoError(t, err)
	return set
}

func testImage(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func validPayload() *project.Payload {
	return &project.Payload{
		Category:    "web",
		AssetFolder: "demo-app",
		Locales: map[string]project.LocaleContent{
			"pt": {Title: "Demonstração", Description: "<p>Olá</p>"},
			"en": {Title: "Demo", Description: "<p>Hello</p>"},
			"es": {Title: "Demostración", Description: "<p>Hola</p>"},
		},
		Shared: project.SharedFields{
			InitialDate:          "2025-01",
			EndDate:              "2025-06",
			ProjectURL:           "https://example.com",
			Developed:            true,
			DevelopingPercentage: 100,
			Compatibility:        2,
			Icons:                []catalog.Icon{{Class: "devicon-go", Tooltip: "Go"}},
		},
		Gallery:   []media.PlanEntry{{Kind: media.KindNew, FileID: "f1"}},
		Thumbnail: &media.PlanEntry{Kind: media.KindNew, FileID: "thumb"},
	}
}

func validUploads(t *testing.T) media.Uploads {
	return media.Uploads{
		"f1":    {FileID: "f1", OriginalName: "one.png", Data: testImage(t, 300, 150)},
		"thumb": {FileID: "thumb", OriginalName: "thumb.png", Data: testImage(t, 120, 90)},
	}
}

/*
TestService_Create places the identical record at the same (category, index)
in all three locale documents, with a generated identifier.
*/
func TestService_Create(t *testing.T) {
	f := newFixture(t)

	detail, err := f.service.Create(context.Background(), validPayload(), validUploads(t))
	require.NoError(t, err)

	assert.True(t, uuidv7.IsValid(detail.Identifier))
	assert.Equal(t, "web", detail.Category)
	assert.Equal(t, 0, detail.Index)

	set := f.readAll(t)
	for _, locale := range locales {
		records := set[locale].Records("web")
		require.Len(t, records, 1, locale)
		assert.Equal(t, detail.Identifier, records[0].Identifier, locale)
		assert.Equal(t, "assets/img/portfolio/thumbnails/demo-app.jpg", records[0].Image)
		assert.Equal(t, []string{"assets/img/portfolio/demo-app/demo-app1.jpg"}, records[0].Images)
		assert.Equal(t, 100.0, records[0].DevelopingPercentage)
	}
	assert.Equal(t, "Demo", set["en"].Records("web")[0].Title)
	assert.Equal(t, "Demonstração", set["pt"].Records("web")[0].Title)
}

/*
TestService_Create_SanitizesDescriptions strips disallowed HTML server-side.
*/
func TestService_Create_SanitizesDescriptions(t *testing.T) {
	f := newFixture(t)

	payload := validPayload()
	content := payload.Locales["en"]
	content.Description = `<p>ok</p><script>alert(1)</script>`
	payload.Locales["en"] = content

	_, err := f.service.Create(context.Background(), payload, validUploads(t))
	require.NoError(t, err)

	set := f.readAll(t)
	description := set["en"].Records("web")[0].Description
	assert.Contains(t, description, "<p>ok</p>")
	assert.NotContains(t, description, "script")
}

/*
TestService_Create_UnknownCategory fails validation with zero side effects.
*/
func TestService_Create_UnknownCategory(t *testing.T) {
	f := newFixture(t)

	payload := validPayload()
	payload.Category = "games"

	_, err := f.service.Create(context.Background(), payload, validUploads(t))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	set := f.readAll(t)
	assert.Equal(t, 0, set["pt"].Len("web"))
	_, statErr := os.Stat(filepath.Join(f.root, "assets"))
	assert.True(t, os.IsNotExist(statErr))
}

/*
TestService_Create_InvalidPayload rejects before touching the store.
*/
func TestService_Create_InvalidPayload(t *testing.T) {
	f := newFixture(t)

	payload := validPayload()
	payload.Gallery = nil
	payload.Shared.Compatibility = 7

	_, err := f.service.Create(context.Background(), payload, validUploads(t))
	require.Error(t, err)

	appErr := apperr.As(err)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.GreaterOrEqual(t, len(appErr.Details), 2)
}

/*
TestService_Get returns the cross-locale view.
*/
func TestService_Get(t *testing.T) {
	f := newFixture(t)

	created, err := f.service.Create(context.Background(), validPayload(), validUploads(t))
	require.NoError(t, err)

	detail, err := f.service.Get(context.Background(), created.Identifier)
	require.NoError(t, err)
	require.Len(t, detail.Records, 3)
	assert.Equal(t, "Demostración", detail.Records["es"].Title)

	_, err = f.service.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestService_List returns one locale's catalog, defaulting to the reference.
*/
func TestService_List(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), validPayload(), validUploads(t))
	require.NoError(t, err)

	listing, err := f.service.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "pt", listing.Locale)
	assert.Equal(t, 1, listing.Catalog.Len("web"))

	_, err = f.service.List(context.Background(), "fr")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestService_Update replaces content in every locale, keeps the identifier, and
removes assets the new record no longer references.
*/
func TestService_Update(t *testing.T) {
	f := newFixture(t)

	created, err := f.service.Create(context.Background(), validPayload(), validUploads(t))
	require.NoError(t, err)
	oldGallery := filepath.Join(f.root, filepath.FromSlash("assets/img/portfolio/demo-app/demo-app1.jpg"))
	_, err = os.Stat(oldGallery)
	require.NoError(t, err)

	payload := validPayload()
	content := payload.Locales["en"]
	content.Title = "Demo v2"
	payload.Locales["en"] = content
	// A fresh gallery upload replaces the original file entirely.
	payload.Gallery = []media.PlanEntry{{Kind: media.KindNew, FileID: "f2"}}
	payload.Thumbnail = &media.PlanEntry{Kind: media.KindExisting, Path: "assets/img/portfolio/thumbnails/demo-app.jpg"}
	uploads := media.Uploads{
		"f2": {FileID: "f2", OriginalName: "two.png", Data: testImage(t, 250, 120)},
	}

	updated, err := f.service.Update(context.Background(), created.Identifier, payload, uploads)
	require.NoError(t, err)
	assert.Equal(t, created.Identifier, updated.Identifier)

	set := f.readAll(t)
	for _, locale := range locales {
		records := set[locale].Records("web")
		require.Len(t, records, 1, locale)
		assert.Equal(t, []string{"assets/img/portfolio/demo-app/demo-app2.jpg"}, records[0].Images)
	}
	assert.Equal(t, "Demo v2", set["en"].Records("web")[0].Title)
	assert.Equal(t, "Demonstração", set["pt"].Records("web")[0].Title)

	// The replaced gallery file is gone; the kept thumbnail is not.
	_, err = os.Stat(oldGallery)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(f.root, filepath.FromSlash("assets/img/portfolio/thumbnails/demo-app.jpg")))
	assert.NoError(t, err)
}

/*
TestService_Update_IndexDriftedLocale edits a record that one locale lists at
a different position than the reference. Keeping its own identifier must not
conflict with the drifted locale's copy of itself.
*/
func TestService_Update_IndexDriftedLocale(t *testing.T) {
	f := newFixture(t)

	first, err := f.service.Create(context.Background(), validPayload(), validUploads(t))
	require.NoError(t, err)

	second := validPayload()
	second.AssetFolder = "other-app"
	_, err = f.service.Create(context.Background(), second, validUploads(t))
	require.NoError(t, err)

	// Hand-swap the two records in the en catalog only.
	path := filepath.Join(f.root, "data", "projects-en.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc catalog.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	records := doc.Records("web")
	require.Len(t, records, 2)
	doc.SetRecords("web", []*catalog.Record{records[1], records[0]})
	data, err = json.MarshalIndent(&doc, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	payload := validPayload()
	content := payload.Locales["en"]
	content.Title = "Drift survivor"
	payload.Locales["en"] = content
	payload.Gallery = []media.PlanEntry{{Kind: media.KindExisting, Path: "assets/img/portfolio/demo-app/demo-app1.jpg"}}
	payload.Thumbnail = &media.PlanEntry{Kind: media.KindExisting, Path: "assets/img/portfolio/thumbnails/demo-app.jpg"}

	_, err = f.service.Update(context.Background(), first.Identifier, payload, media.Uploads{})
	require.NoError(t, err)

	set := f.readAll(t)
	enRecords := set["en"].Records("web")
	require.Len(t, enRecords, 2)
	assert.Equal(t, first.Identifier, enRecords[1].Identifier)
	assert.Equal(t, "Drift survivor", enRecords[1].Title)
}

/*
TestService_Update_MovesCategory relocates the record in all locales.
*/
func TestService_Update_MovesCategory(t *testing.T) {
	f := newFixture(t)
	f.seedEmpty(t, "web", "mobile")

	created, err := f.service.Create(context.Background(), validPayload(), validUploads(t))
	require.NoError(t, err)

	payload := validPayload()
	payload.Category = "mobile"
	payload.Gallery = []media.PlanEntry{{Kind: media.KindExisting, Path: "assets/img/portfolio/demo-app/demo-app1.jpg"}}
	payload.Thumbnail = &media.PlanEntry{Kind: media.KindExisting, Path: "assets/img/portfolio/thumbnails/demo-app.jpg"}

	updated, err := f.service.Update(context.Background(), created.Identifier, payload, media.Uploads{})
	require.NoError(t, err)
	assert.Equal(t, "mobile", updated.Category)

	set := f.readAll(t)
	for _, locale := range locales {
		assert.Equal(t, 0, set[locale].Len("web"), locale)
		assert.Equal(t, 1, set[locale].Len("mobile"), locale)
	}
}

/*
TestService_Update_NotFound leaves the catalog untouched.
*/
func TestService_Update_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Update(context.Background(), uuidv7.New(), validPayload(), validUploads(t))
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestService_Delete removes the record from all locales, deletes every asset
only it referenced, and prunes the emptied gallery directory.
*/
func TestService_Delete(t *testing.T) {
	f := newFixture(t)

	created, err := f.service.Create(context.Background(), validPayload(), validUploads(t))
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(context.Background(), created.Identifier))

	set := f.readAll(t)
	for _, locale := range locales {
		assert.Equal(t, 0, set[locale].Len("web"), locale)
	}

	galleryDir := filepath.Join(f.root, filepath.FromSlash("assets/img/portfolio/demo-app"))
	_, err = os.Stat(galleryDir)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(f.root, filepath.FromSlash("assets/img/portfolio/thumbnails/demo-app.jpg")))
	assert.True(t, os.IsNotExist(err))
}

/*
TestService_Delete_KeepsSharedAssets: an asset still referenced by a surviving
record survives the delete.
*/
func TestService_Delete_KeepsSharedAssets(t *testing.T) {
	f := newFixture(t)

	first, err := f.service.Create(context.Background(), validPayload(), validUploads(t))
	require.NoError(t, err)

	// Second record reuses the first one's gallery file by reference.
	payload := validPayload()
	payload.AssetFolder = "other-app"
	payload.Gallery = []media.PlanEntry{{Kind: media.KindExisting, Path: "assets/img/portfolio/demo-app/demo-app1.jpg"}}
	payload.Thumbnail = &media.PlanEntry{Kind: media.KindNew, FileID: "thumb"}
	_, err = f.service.Create(context.Background(), payload, validUploads(t))
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(context.Background(), first.Identifier))

	shared := filepath.Join(f.root, filepath.FromSlash("assets/img/portfolio/demo-app/demo-app1.jpg"))
	_, err = os.Stat(shared)
	assert.NoError(t, err)
}

/*
TestService_Reorder persists the requested order in all three locales.
*/
func TestService_Reorder(t *testing.T) {
	f := newFixture(t)

	var ids []string
	for i, folder := range []string{"app-a", "app-b", "app-c"} {
		payload := validPayload()
		payload.AssetFolder = folder
		content := payload.Locales["pt"]
		content.Title = folder
		payload.Locales["pt"] = content
		detail, err := f.service.Create(context.Background(), payload, validUploads(t))
		require.NoError(t, err, i)
		ids = append(ids, detail.Identifier)
	}

	// [A,B,C] -> [C,A,B]
	require.NoError(t, f.service.Reorder(context.Background(), "web", []string{ids[2], ids[0], ids[1]}))

	set := f.readAll(t)
	for _, locale := range locales {
		records := set[locale].Records("web")
		require.Len(t, records, 3, locale)
		assert.Equal(t, ids[2], records[0].Identifier, locale)
		assert.Equal(t, ids[0], records[1].Identifier, locale)
		assert.Equal(t, ids[1], records[2].Identifier, locale)
	}
}

/*
TestService_Reorder_Invalid rejects incomplete, unknown, or duplicated orders
and leaves the catalog unchanged.
*/
func TestService_Reorder_Invalid(t *testing.T) {
	f := newFixture(t)

	first, err := f.service.Create(context.Background(), validPayload(), validUploads(t))
	require.NoError(t, err)
	payload := validPayload()
	payload.AssetFolder = "second-app"
	second, err := f.service.Create(context.Background(), payload, validUploads(t))
	require.NoError(t, err)

	tests := []struct {
		name  string
		order []string
	}{
		{"missing_record", []string{first.Identifier}},
		{"unknown_identifier", []string{first.Identifier, uuidv7.New()}},
		{"duplicate_identifier", []string{first.Identifier, first.Identifier}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.service.Reorder(context.Background(), "web", tt.order)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

			set := f.readAll(t)
			records := set["pt"].Records("web")
			require.Len(t, records, 2)
			assert.Equal(t, first.Identifier, records[0].Identifier)
			assert.Equal(t, second.Identifier, records[1].Identifier)
		})
	}
}

/*
TestService_Consistency reports divergence without repairing it.
*/
func TestService_Consistency(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), validPayload(), validUploads(t))
	require.NoError(t, err)

	report, err := f.service.Consistency(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Consistent)

	// Hand-edit one locale out of sync.
	doc := catalog.NewDocument()
	doc.AddCategory("web")
	doc.AddCategory("rogue")
	data, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(f.root, "data", "projects-es.json"), data, 0o644))

	report, err = f.service.Consistency(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Consistent)
}
