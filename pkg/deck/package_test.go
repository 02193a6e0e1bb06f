package deck

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMember is one fixture entry; Store selects zip.Store over the
// default deflate so both methods appear in fixtures.
type testMember struct {
	Name  string
	Data  string
	Store bool
}

// writeTestDeck builds a pptx fixture with the given members, in order.
func writeTestDeck(t *testing.T, dir string, members []testMember) string {
	t.Helper()

	path := filepath.Join(dir, "deck.pptx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, m := range members {
		method := zip.Deflate
		if m.Store {
			method = zip.Store
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: m.Name, Method: method})
		require.NoError(t, err)
		_, err = w.Write([]byte(m.Data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func basicMembers() []testMember {
	return []testMember{
		{Name: "[Content_Types].xml", Data: `<Types/>`},
		{Name: "ppt/presentation.xml", Data: `<p:presentation/>`},
		{Name: "ppt/slides/slide1.xml", Data: slideXML},
		{Name: "ppt/charts/chart1.xml", Data: chartXML},
		{Name: "ppt/embeddings/oleObject1.xlsx", Data: "workbook-bytes-1", Store: true},
		{Name: "ppt/embeddings/oleObject2.xlsx", Data: "workbook-bytes-2"},
		{Name: "ppt/media/image1.png", Data: "not-a-real-png", Store: true},
	}
}

func TestValidatePath(t *testing.T) {
	dir := t.TempDir()
	deckPath := writeTestDeck(t, dir, basicMembers())

	assert.NoError(t, ValidatePath(deckPath))

	err := ValidatePath(filepath.Join(dir, "missing.pptx"))
	assert.ErrorIs(t, err, ErrInvalidDocument)

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))
	assert.ErrorIs(t, ValidatePath(txt), ErrInvalidDocument)

	assert.ErrorIs(t, ValidatePath(dir), ErrInvalidDocument)
}

func TestPackage_Extract(t *testing.T) {
	dir := t.TempDir()
	pkg, err := Open(writeTestDeck(t, dir, basicMembers()))
	require.NoError(t, err)

	got, err := pkg.Extract(EmbeddedWorkbookGlob)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []byte("workbook-bytes-1"), got["ppt/embeddings/oleObject1.xlsx"])
	assert.Equal(t, []byte("workbook-bytes-2"), got["ppt/embeddings/oleObject2.xlsx"])
}

func TestPackage_SubstituteUnknownMember(t *testing.T) {
	dir := t.TempDir()
	pkg, err := Open(writeTestDeck(t, dir, basicMembers()))
	require.NoError(t, err)

	err = pkg.Substitute(map[string][]byte{"ppt/embeddings/nope.xlsx": []byte("x")})
	require.Error(t, err)

	// Failure leaves no temp file behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPackage_SubstituteReplacesOnlySelectedEntry(t *testing.T) {
	dir := t.TempDir()
	deckPath := writeTestDeck(t, dir, basicMembers())

	pkg, err := Open(deckPath)
	require.NoError(t, err)
	require.NoError(t, pkg.Substitute(map[string][]byte{
		"ppt/embeddings/oleObject2.xlsx": []byte("updated-workbook"),
	}))

	reopened, err := Open(deckPath)
	require.NoError(t, err)

	got, err := reopened.Extract(EmbeddedWorkbookGlob)
	require.NoError(t, err)
	assert.Equal(t, []byte("workbook-bytes-1"), got["ppt/embeddings/oleObject1.xlsx"])
	assert.Equal(t, []byte("updated-workbook"), got["ppt/embeddings/oleObject2.xlsx"])

	// Entry set and order are unchanged.
	want := make([]string, 0, len(basicMembers()))
	for _, m := range basicMembers() {
		want = append(want, m.Name)
	}
	assert.Equal(t, want, reopened.Names())
}

func TestPackage_NoOpSubstituteIsByteIdentical(t *testing.T) {
	dir := t.TempDir()
	deckPath := writeTestDeck(t, dir, basicMembers())

	before, err := os.ReadFile(deckPath)
	require.NoError(t, err)

	pkg, err := Open(deckPath)
	require.NoError(t, err)
	extracted, err := pkg.Extract(EmbeddedWorkbookGlob)
	require.NoError(t, err)
	require.NoError(t, pkg.Substitute(extracted))

	after, err := os.ReadFile(deckPath)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(before, after), "no-op substitute changed the container bytes")
}

func TestPackage_SubstitutePreservesCompressionMethod(t *testing.T) {
	dir := t.TempDir()
	deckPath := writeTestDeck(t, dir, basicMembers())

	pkg, err := Open(deckPath)
	require.NoError(t, err)
	require.NoError(t, pkg.Substitute(map[string][]byte{
		"ppt/embeddings/oleObject2.xlsx": []byte("updated-workbook"),
	}))

	r, err := zip.OpenReader(deckPath)
	require.NoError(t, err)
	defer r.Close()

	methods := map[string]uint16{}
	for _, f := range r.File {
		methods[f.Name] = f.Method
	}
	assert.Equal(t, uint16(zip.Store), methods["ppt/embeddings/oleObject1.xlsx"])
	assert.Equal(t, uint16(zip.Store), methods["ppt/media/image1.png"])
	assert.Equal(t, uint16(zip.Deflate), methods["ppt/embeddings/oleObject2.xlsx"])
}

func TestPackage_SaveStagedChanges(t *testing.T) {
	dir := t.TempDir()
	deckPath := writeTestDeck(t, dir, basicMembers())

	pkg, err := Open(deckPath)
	require.NoError(t, err)
	assert.False(t, pkg.HasChanges())

	pkg.SetData("ppt/slides/slide1.xml", []byte("<p:sld/>"))
	assert.True(t, pkg.HasChanges())

	staged, ok := pkg.Data("ppt/slides/slide1.xml")
	require.True(t, ok)
	assert.Equal(t, []byte("<p:sld/>"), staged)

	require.NoError(t, pkg.Save())
	assert.False(t, pkg.HasChanges())

	reopened, err := Open(deckPath)
	require.NoError(t, err)
	data, ok := reopened.Data("ppt/slides/slide1.xml")
	require.True(t, ok)
	assert.Equal(t, []byte("<p:sld/>"), data)
}

func TestOpen_NotAZip(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.pptx")
	require.NoError(t, os.WriteFile(bad, []byte("this is not a zip"), 0o644))

	_, err := Open(bad)
	assert.Error(t, err)
}
