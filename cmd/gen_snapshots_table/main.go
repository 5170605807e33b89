// Command gen_snapshots_table rewrites the test ROM gallery in the README
// from the reference snapshots of the integration suite.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli"
)

const (
	startMarker = "<!-- SNAPSHOTS:START -->"
	endMarker   = "<!-- SNAPSHOTS:END -->"

	snapshotsDir = "test/integration/testdata/snapshots"
)

var errNoMarkers = errors.New("snapshot markers not found")

type snapshot struct {
	Name string
	Src  string
}

var tableTemplate = template.Must(template.New("table").Parse(`<table>
{{- range .Rows}}
  <tr>
{{- range .}}
    {{if .Name}}<td align="center"><img src="{{.Src}}" width="{{$.Width}}" /><br><sub>{{.Name}}</sub></td>{{else}}<td></td>{{end}}
{{- end}}
  </tr>
{{- end}}
</table>
`))

func main() {
	app := cli.NewApp()
	app.Name = "gen_snapshots_table"
	app.Usage = "update the README test ROM gallery"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "readme", Value: "README.md", Usage: "README file to update in place"},
		cli.StringFlag{Name: "snapshots", Value: snapshotsDir, Usage: "snapshots directory"},
		cli.IntFlag{Name: "cols", Value: 4, Usage: "images per row"},
		cli.IntFlag{Name: "width", Value: 240, Usage: "image width in pixels"},
	}
	app.Action = generate

	if err := app.Run(os.Args); err != nil {
		slog.Error("failed to update snapshot table", "error", err)
		os.Exit(1)
	}
}

func generate(c *cli.Context) error {
	items, err := collectSnapshots(c.String("snapshots"))
	if err != nil {
		return err
	}

	table, err := renderTable(items, c.Int("cols"), c.Int("width"))
	if err != nil {
		return err
	}

	readme := c.String("readme")
	content, err := os.ReadFile(readme)
	if err != nil {
		return err
	}
	updated, err := replaceTable(string(content), table)
	if err != nil {
		return fmt.Errorf("%s: %w", readme, err)
	}
	if err := os.WriteFile(readme, []byte(updated), 0o644); err != nil {
		return err
	}
	slog.Info("updated snapshot table", "readme", readme, "snapshots", len(items))
	return nil
}

// collectSnapshots lists the reference PNGs in dir, skipping the _actual
// files left behind by failing runs.
func collectSnapshots(dir string) ([]snapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var items []snapshot
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".png") || strings.Contains(name, "_actual.") {
			continue
		}
		items = append(items, snapshot{
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Src:  path.Join(snapshotsDir, url.PathEscape(name)),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func renderTable(items []snapshot, cols, width int) (string, error) {
	if cols <= 0 {
		cols = 4
	}
	var rows [][]snapshot
	for i := 0; i < len(items); i += cols {
		row := make([]snapshot, cols)
		copy(row, items[i:min(i+cols, len(items))])
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	err := tableTemplate.Execute(&buf, struct {
		Rows  [][]snapshot
		Width int
	}{rows, width})
	return buf.String(), err
}

// replaceTable swaps whatever sits between the markers for table.
func replaceTable(content, table string) (string, error) {
	start := strings.Index(content, startMarker)
	end := strings.Index(content, endMarker)
	if start == -1 || end == -1 || end < start {
		return "", errNoMarkers
	}
	return content[:start+len(startMarker)] + "\n" + table + content[end:], nil
}
