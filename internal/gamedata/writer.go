package gamedata

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"planets-galaxymap/internal/galaxy"
	"planets-galaxymap/internal/geometry"
	"planets-galaxymap/internal/shared/errors"
)

// Writer patches planet files below Root. Only the bytes of the touched
// elements change; formatting, comments and the z component survive.
type Writer struct {
	Root   string
	logger *slog.Logger
}

func NewWriter(root string, logger *slog.Logger) *Writer {
	return &Writer{Root: root, logger: logger}
}

func (w *Writer) xmlPath() string {
	return filepath.Join(w.Root, xmlDir)
}

// edit replaces data[start:end] with text.
type edit struct {
	start, end int
	text       string
}

type filePatch struct {
	file  PlanetFile
	data  []byte
	edits []edit
}

// WriteCoordinates sets the galactic position of every named planet. All
// names must exist before any file is touched; each file is then replaced
// on its own, so a failure can leave earlier files updated.
func (w *Writer) WriteCoordinates(ctx context.Context, coords map[string]geometry.Vec2) error {
	logger := w.logger.With("component", "gamedata_writer", "operation", "write_coordinates", "planets", len(coords))

	if len(coords) == 0 {
		logger.Debug("Nothing to write")
		return nil
	}

	files, err := FindPlanetFilesAndRoots(filepath.Join(w.xmlPath(), GameObjectFilesXML))
	if err != nil {
		return errors.WrapExternal("failed to list planet files", err)
	}

	found := make(map[string]bool, len(coords))
	var patches []filePatch
	for _, file := range files {
		data, err := os.ReadFile(file.Path)
		if err != nil {
			return errors.WrapExternal("failed to read planet file", err)
		}
		edits, err := positionEdits(data, coords, found)
		if err != nil {
			return errors.WrapExternal(fmt.Sprintf("failed to scan %s", file.Name), err)
		}
		if len(edits) > 0 {
			patches = append(patches, filePatch{file: file, data: data, edits: edits})
		}
	}

	var missing []string
	for name := range coords {
		if !found[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		logger.Error("Planets not found in game data", "missing", missing)
		return errors.NotFoundf("planets not found in game data: %v", missing)
	}

	for _, p := range patches {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeFileAtomic(p.file.Path, apply(p.data, p.edits)); err != nil {
			logger.Error("Failed to write planet file", "file", p.file.Name, "error", err)
			return errors.WrapExternal("failed to write planet file", err)
		}
		logger.Debug("Planet file updated", "file", p.file.Name, "edits", len(p.edits))
	}

	logger.Info("Coordinates written", "files", len(patches))
	return nil
}

// positionEdits finds the Galactic_Position of every planet in data that
// has an entry in coords and marks it in found.
func positionEdits(data []byte, coords map[string]geometry.Vec2, found map[string]bool) ([]edit, error) {
	dec := newDecoder(bytes.NewReader(data))

	var (
		edits    []edit
		depth    int
		current  string
		hasPos   bool
		posStart = -1
	)
	for {
		offset := int(dec.InputOffset())
		tok, err := dec.Token()
		if err == io.EOF {
			return edits, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case depth == 1 && t.Name.Local == planetElement:
				current, hasPos = attr(t, "Name"), false
			case depth == 2 && current != "" && t.Name.Local == positionElement:
				posStart = int(dec.InputOffset())
			}
			depth++
		case xml.EndElement:
			depth--
			v, wanted := coords[current]
			switch {
			case depth == 2 && posStart >= 0 && t.Name.Local == positionElement:
				if wanted {
					raw := string(data[posStart:offset])
					text := formatFloat(v.X) + ", " + formatFloat(v.Y)
					// an empty position loads as inherited, so it is filled in
					if strings.TrimSpace(raw) != "" {
						pos, err := parsePosition(raw)
						if err != nil {
							return nil, fmt.Errorf("planet %s: %w", current, err)
						}
						text = formatPosition(raw, pos, v)
					}
					edits = append(edits, edit{start: posStart, end: offset, text: text})
					found[current] = true
				}
				hasPos, posStart = true, -1
			case depth == 1 && t.Name.Local == planetElement:
				if wanted && !hasPos {
					at := lineStart(data, offset)
					indent := string(data[at:offset])
					edits = append(edits, edit{start: at, end: at, text: indent + "\t" + positionXML(v) + "\n"})
					found[current] = true
				}
				current = ""
			}
		}
	}
}

func attr(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

// lineStart returns the start of the line holding offset when only
// whitespace precedes offset on that line, and offset otherwise.
func lineStart(data []byte, offset int) int {
	i := offset
	for i > 0 && (data[i-1] == ' ' || data[i-1] == '\t') {
		i--
	}
	if i == 0 || data[i-1] == '\n' {
		return i
	}
	return offset
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatPosition writes v into the original position text, keeping its
// surrounding whitespace and everything after the y component.
func formatPosition(raw string, old position, v geometry.Vec2) string {
	lead := raw[:len(raw)-len(strings.TrimLeft(raw, " \t\r\n"))]
	xy := lead + formatFloat(v.X) + ", " + formatFloat(v.Y)
	if old.rest != "" {
		return xy + "," + old.rest
	}
	return xy + raw[len(strings.TrimRight(raw, " \t\r\n")):]
}

func positionXML(v geometry.Vec2) string {
	return fmt.Sprintf("<%s>%s, %s, 0</%s>", positionElement, formatFloat(v.X), formatFloat(v.Y), positionElement)
}

func apply(data []byte, edits []edit) []byte {
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var out bytes.Buffer
	out.Grow(len(data))
	last := 0
	for _, e := range edits {
		out.Write(data[last:e.start])
		out.WriteString(e.text)
		last = e.end
	}
	out.Write(data[last:])
	return out.Bytes()
}

// CreatePlanet appends planet to its containing file, creating the file and
// registering it in the game object index when needed.
func (w *Writer) CreatePlanet(ctx context.Context, planet *galaxy.Planet) error {
	logger := w.logger.With("component", "gamedata_writer", "operation", "create_planet", "planet", planet.Name, "file", planet.ContainingFile)

	if err := ctx.Err(); err != nil {
		return err
	}

	element, err := planetXMLElement(planet)
	if err != nil {
		return errors.WrapInternal("failed to encode planet", err)
	}

	path, err := resolve(w.xmlPath(), planet.ContainingFile)
	if err != nil {
		path = filepath.Join(w.xmlPath(), filepath.FromSlash(planet.ContainingFile))
		doc := fmt.Sprintf("<?xml version=\"1.0\" ?>\n<%s>\n%s</%s>\n", defaultPlanetsRoot, element, defaultPlanetsRoot)
		if err := writeFileAtomic(path, []byte(doc)); err != nil {
			logger.Error("Failed to create planet file", "error", err)
			return errors.WrapExternal("failed to create planet file", err)
		}
		logger.Info("Planet file created")
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.WrapExternal("failed to read planet file", err)
		}
		patched, err := insertBeforeRootEnd(data, element)
		if err != nil {
			return errors.WrapExternal(fmt.Sprintf("failed to scan %s", planet.ContainingFile), err)
		}
		if err := writeFileAtomic(path, patched); err != nil {
			logger.Error("Failed to write planet file", "error", err)
			return errors.WrapExternal("failed to write planet file", err)
		}
	}

	if err := w.register(planet.ContainingFile); err != nil {
		logger.Error("Failed to register planet file", "error", err)
		return errors.WrapExternal("failed to register planet file", err)
	}

	logger.Info("Planet added to game data")
	return nil
}

func planetXMLElement(planet *galaxy.Planet) (string, error) {
	var name bytes.Buffer
	if err := xml.EscapeText(&name, []byte(planet.Name)); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\t<%s Name=\"%s\">\n", planetElement, name.String())
	if planet.VariantOf != "" {
		var base bytes.Buffer
		if err := xml.EscapeText(&base, []byte(planet.VariantOf)); err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\t\t<%s>%s</%s>\n", variantOfElement, base.String(), variantOfElement)
	}
	fmt.Fprintf(&b, "\t\t%s\n", positionXML(geometry.Vec2{X: planet.X, Y: planet.Y}))
	fmt.Fprintf(&b, "\t</%s>\n", planetElement)
	return b.String(), nil
}

// register lists file in the game object index unless it is already there.
func (w *Writer) register(file string) error {
	indexPath := filepath.Join(w.xmlPath(), GameObjectFilesXML)

	names, err := readIndex(indexPath)
	if err != nil {
		return err
	}
	for _, name := range names {
		if strings.EqualFold(filepath.ToSlash(name), filepath.ToSlash(file)) {
			return nil
		}
	}

	data, err := os.ReadFile(indexPath)
	if err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}

	var entry bytes.Buffer
	entry.WriteString("\t<" + indexEntryElement + ">")
	if err := xml.EscapeText(&entry, []byte(file)); err != nil {
		return err
	}
	entry.WriteString("</" + indexEntryElement + ">\n")

	patched, err := insertBeforeRootEnd(data, entry.String())
	if err != nil {
		return err
	}
	return writeFileAtomic(indexPath, patched)
}

// insertBeforeRootEnd inserts snippet, which ends in a newline, in front of
// the closing tag of the document element.
func insertBeforeRootEnd(data []byte, snippet string) ([]byte, error) {
	dec := newDecoder(bytes.NewReader(data))
	depth := 0
	for {
		offset := int(dec.InputOffset())
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("document has no closing root element")
		}
		if err != nil {
			return nil, err
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				at := lineStart(data, offset)
				if at == offset && (offset == 0 || data[offset-1] != '\n') {
					snippet = "\n" + snippet
				}
				return apply(data, []edit{{start: at, end: at, text: snippet}}), nil
			}
		}
	}
}
