// Package gamedata reads and patches the game's XML data files.
//
// A data root contains an XML directory with three index files that list
// the files holding planets, trade routes and campaigns. Listed names are
// relative to the XML directory and are matched case-insensitively, the way
// the game resolves them.
package gamedata

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	xmlDir             = "XML"
	GameObjectFilesXML = "GameObjectFiles.XML"
	TradeRouteFilesXML = "TradeRouteFiles.XML"
	CampaignFilesXML   = "CampaignFiles.XML"
	planetElement      = "Planet"
	positionElement    = "Galactic_Position"
	variantOfElement   = "Variant_Of_Existing_Type"
	tradeRouteElement  = "TradeRoute"
	campaignElement    = "Campaign"
	defaultPlanetsRoot = "Planets"
	indexEntryElement  = "File"
)

// PlanetFile is a game object file that defines at least one planet.
type PlanetFile struct {
	// Name is the file name as listed in the index.
	Name string
	Path string
	// Root is the name of the document element.
	Root string
}

func newDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	// The game's files declare all sorts of single byte encodings but only
	// ever use ASCII.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	return dec
}

// resolve finds name inside dir, falling back to a case-insensitive match.
func resolve(dir, name string) (string, error) {
	name = filepath.FromSlash(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	exact := filepath.Join(dir, name)
	if _, err := os.Stat(exact); err == nil {
		return exact, nil
	}

	parent := filepath.Dir(exact)
	entries, err := os.ReadDir(parent)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", parent, err)
	}
	base := filepath.Base(exact)
	for _, entry := range entries {
		if strings.EqualFold(entry.Name(), base) {
			return filepath.Join(parent, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("file %s not found in %s: %w", base, parent, os.ErrNotExist)
}

// readIndex returns the entries of an index file such as GameObjectFiles.XML.
func readIndex(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index %s: %w", path, err)
	}

	var files []string
	dec := newDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse index %s: %w", path, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != indexEntryElement {
			continue
		}
		var name string
		if err := dec.DecodeElement(&name, &start); err != nil {
			return nil, fmt.Errorf("failed to parse index %s: %w", path, err)
		}
		if name = strings.TrimSpace(name); name != "" {
			files = append(files, name)
		}
	}
	return files, nil
}

// FindPlanetFilesAndRoots reads the game object index at indexPath and
// returns the listed files that define planets, in index order. Files that
// are listed but missing are skipped.
func FindPlanetFilesAndRoots(indexPath string) ([]PlanetFile, error) {
	names, err := readIndex(indexPath)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(indexPath)
	var out []PlanetFile
	for _, name := range names {
		path, err := resolve(dir, name)
		if err != nil {
			continue
		}
		root, hasPlanets, err := inspect(path)
		if err != nil {
			return nil, err
		}
		if hasPlanets {
			out = append(out, PlanetFile{Name: name, Path: path, Root: root})
		}
	}
	return out, nil
}

// inspect returns the document element name of path and whether any of its
// children is a planet.
func inspect(path string) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	dec := newDecoder(f)
	root := ""
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return root, false, nil
		}
		if err != nil {
			return "", false, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				root = t.Name.Local
			} else if depth == 2 && t.Name.Local == planetElement {
				return root, true, nil
			}
		case xml.EndElement:
			depth--
		}
	}
}

// writeFileAtomic replaces path with data through a temporary file in the
// same directory, keeping the permissions of the previous file.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".gamedata-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// splitList splits the comma or whitespace separated name lists used by
// campaign files.
func splitList(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}
