// Package deck mutates PowerPoint packages in place: formatting-preserving
// text substitution over slide and chart XML, and byte-exact member surgery
// on the surrounding zip container.
package deck

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

const (
	// EmbeddedWorkbookGlob selects the Excel packages embedded in a deck.
	// They always live under a fixed prefix with a fixed extension.
	EmbeddedWorkbookGlob = "ppt/embeddings/*.xlsx"

	slideGlob = "ppt/slides/slide*.xml"
	chartGlob = "ppt/charts/chart*.xml"
)

var (
	// ErrInvalidDocument marks paths that fail up-front validation.
	ErrInvalidDocument = errors.New("invalid document")
)

// 📦 member is one interior resource of the container. Raw holds the
// still-compressed payload so untouched members round-trip byte-identically.
type member struct {
	header zip.FileHeader
	raw    []byte
	data   []byte
}

// 📦 Package is an opened zip-based document container. All members are held
// in memory in their original order; Substitute rebuilds the container on
// disk through a temp file and an atomic rename.
type Package struct {
	path    string
	members []*member
	dirty   map[string][]byte
}

// 🔍 ValidatePath checks that the document exists and carries a supported
// extension, without opening it.
func ValidatePath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Errorf("%w: %s: %w", ErrInvalidDocument, path, err)
	}
	if info.IsDir() {
		return errors.Errorf("%w: %s is a directory", ErrInvalidDocument, path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pptx", ".ppt":
		return nil
	default:
		return errors.Errorf("%w: %s: unsupported extension", ErrInvalidDocument, path)
	}
}

// 🏭 Open reads every member of the container, keeping each member's header,
// compressed payload and decompressed bytes.
func Open(path string) (*Package, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Errorf("opening container %s: %w", path, err)
	}
	defer r.Close()

	p := &Package{path: path, dirty: map[string][]byte{}}
	for _, f := range r.File {
		rawRC, err := f.OpenRaw()
		if err != nil {
			return nil, errors.Errorf("opening raw member %s: %w", f.Name, err)
		}
		raw, err := io.ReadAll(rawRC)
		if err != nil {
			return nil, errors.Errorf("reading raw member %s: %w", f.Name, err)
		}

		rc, err := f.Open()
		if err != nil {
			return nil, errors.Errorf("opening member %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, errors.Errorf("reading member %s: %w", f.Name, err)
		}

		p.members = append(p.members, &member{header: f.FileHeader, raw: raw, data: data})
	}
	return p, nil
}

// Path returns the on-disk location of the container.
func (p *Package) Path() string {
	return p.path
}

// 📜 Names returns every member name in container order.
func (p *Package) Names() []string {
	names := make([]string, 0, len(p.members))
	for _, m := range p.members {
		names = append(names, m.header.Name)
	}
	return names
}

// Data returns the decompressed payload of a named member, honoring any
// pending update staged with SetData.
func (p *Package) Data(name string) ([]byte, bool) {
	if staged, ok := p.dirty[name]; ok {
		return staged, true
	}
	for _, m := range p.members {
		if m.header.Name == name {
			return m.data, true
		}
	}
	return nil, false
}

// ✏️ SetData stages a payload update for a named member. Nothing touches
// disk until Save.
func (p *Package) SetData(name string, data []byte) {
	p.dirty[name] = data
}

// HasChanges reports whether any member update is staged.
func (p *Package) HasChanges() bool {
	return len(p.dirty) > 0
}

// 🔍 Extract returns name → raw decompressed bytes for every member whose
// name matches the doublestar selector.
func (p *Package) Extract(selector string) (map[string][]byte, error) {
	out := map[string][]byte{}
	for _, m := range p.members {
		ok, err := doublestar.Match(selector, m.header.Name)
		if err != nil {
			return nil, errors.Errorf("matching selector %q: %w", selector, err)
		}
		if ok {
			out[m.header.Name] = m.data
		}
	}
	return out, nil
}

// 💾 Save rebuilds the container with all staged updates applied and
// clears the staging set.
func (p *Package) Save() error {
	if len(p.dirty) == 0 {
		return nil
	}
	if err := p.Substitute(p.dirty); err != nil {
		return err
	}
	p.dirty = map[string][]byte{}
	return nil
}

// 🔁 Substitute writes a new container holding the same member set in the
// same order: members named in updates get the new payload, every other
// member is copied raw so its bytes and header stay identical to the
// source. The new container lands via temp file + atomic rename; on any
// failure the temp file is removed and the original is left untouched.
func (p *Package) Substitute(updates map[string][]byte) error {
	for name := range updates {
		if _, ok := p.Data(name); !ok {
			return errors.Errorf("substitute: no such member %q", name)
		}
	}

	dir := filepath.Dir(p.path)
	tf, err := os.CreateTemp(dir, filepath.Base(p.path)+".tmp-*")
	if err != nil {
		return errors.Errorf("creating temp container: %w", err)
	}
	renamed := false
	defer func(name string) {
		if !renamed {
			_ = os.Remove(name)
		}
	}(tf.Name())

	if err := p.writeAll(tf, updates); err != nil {
		_ = tf.Close()
		return err
	}
	if err := tf.Sync(); err != nil {
		_ = tf.Close()
		return errors.Errorf("syncing temp container: %w", err)
	}
	if err := tf.Close(); err != nil {
		return errors.Errorf("closing temp container: %w", err)
	}

	if err := os.Rename(tf.Name(), p.path); err != nil {
		return errors.Errorf("replacing container: %w", err)
	}
	renamed = true

	// Best-effort parent dir sync; not available on all platforms.
	if df, err := os.Open(dir); err == nil {
		_ = df.Sync()
		_ = df.Close()
	}

	p.applyUpdates(updates)
	return nil
}

func (p *Package) writeAll(w io.Writer, updates map[string][]byte) error {
	zw := zip.NewWriter(w)
	for _, m := range p.members {
		if data, ok := updates[m.header.Name]; ok && !bytes.Equal(data, m.data) {
			header := &zip.FileHeader{
				Name:     m.header.Name,
				Comment:  m.header.Comment,
				Method:   m.header.Method,
				Modified: m.header.Modified,
				Extra:    m.header.Extra,
			}
			fw, err := zw.CreateHeader(header)
			if err != nil {
				return errors.Errorf("creating member %s: %w", m.header.Name, err)
			}
			if _, err := fw.Write(data); err != nil {
				return errors.Errorf("writing member %s: %w", m.header.Name, err)
			}
			continue
		}

		if m.raw == nil {
			// Updated on a previous save; the stored compressed form is
			// gone, so re-deflate from the decompressed payload.
			header := &zip.FileHeader{
				Name:     m.header.Name,
				Comment:  m.header.Comment,
				Method:   m.header.Method,
				Modified: m.header.Modified,
				Extra:    m.header.Extra,
			}
			fw, err := zw.CreateHeader(header)
			if err != nil {
				return errors.Errorf("creating member %s: %w", m.header.Name, err)
			}
			if _, err := fw.Write(m.data); err != nil {
				return errors.Errorf("writing member %s: %w", m.header.Name, err)
			}
			continue
		}

		header := m.header
		fw, err := zw.CreateRaw(&header)
		if err != nil {
			return errors.Errorf("copying member %s: %w", m.header.Name, err)
		}
		if _, err := fw.Write(m.raw); err != nil {
			return errors.Errorf("copying member %s: %w", m.header.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return errors.Errorf("finalizing container: %w", err)
	}
	return nil
}

// applyUpdates folds written payloads into the in-memory members so a
// reopened view and this one agree.
func (p *Package) applyUpdates(updates map[string][]byte) {
	for _, m := range p.members {
		if data, ok := updates[m.header.Name]; ok && !bytes.Equal(data, m.data) {
			m.data = data
			m.raw = nil
		}
	}
}
