package viz

import (
	"bytes"
	"fmt"
	"html/template"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
}

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Layout  string // "force", "circle", or "grid"
	FocalID string // node highlighted as the search subject
	Title   string
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{
		Layout: "force",
		Title:  "Collaboration graph",
	}
}

// ValidLayouts lists the supported layout algorithm names.
var ValidLayouts = []string{"force", "circle", "grid"}

// ValidateLayout checks if the layout option is valid.
func ValidateLayout(layout string) error {
	switch layout {
	case "", "force", "circle", "grid":
		return nil
	default:
		return fmt.Errorf("invalid layout %q: must be force, circle, or grid", layout)
	}
}

// GenerateHTML generates a self-contained HTML page for the graph.
func GenerateHTML(graph *Graph, opts HTMLOptions) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}

	if err := ValidateLayout(opts.Layout); err != nil {
		return "", err
	}
	if opts.Title == "" {
		opts.Title = DefaultOptions().Title
	}

	if graph.IsEmpty() {
		return generateEmptyHTML(opts.Title)
	}

	graphJSON, err := graph.ToCytoscapeJSON(opts.FocalID)
	if err != nil {
		return "", err
	}

	data := templateData{
		Title:     opts.Title,
		GraphJSON: template.JS(graphJSON),
		Layout:    layoutToCytoscape(opts.Layout),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// templateData holds data for the HTML template.
type templateData struct {
	Title     string
	GraphJSON template.JS
	Layout    string
}

// layoutToCytoscape converts user-friendly layout names to Cytoscape.js layout algorithm names.
func layoutToCytoscape(layout string) string {
	switch layout {
	case "circle":
		return "circle"
	case "grid":
		return "grid"
	default:
		return "cose"
	}
}

var emptyTemplate = template.Must(template.New("empty").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.}}</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 20vh; color: #555">
  <h2>No graph data</h2>
  <p>Search for a repository (<code>owner/name</code>) or a user login.</p>
</body>
</html>`))

// generateEmptyHTML returns HTML for an empty graph state.
func generateEmptyHTML(title string) (string, error) {
	var buf bytes.Buffer
	if err := emptyTemplate.Execute(&buf, title); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// htmlTemplate draws repositories as squares faded by score and
// contributors as circles. Link length follows the link distance and width
// follows the commit count. Hovering shows details; double click opens the
// GitHub page.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"></script>
  <style>
    body { margin: 0; font-family: sans-serif; }
    #cy { width: 100%; height: 100vh; }
    #info {
      position: absolute; display: none; pointer-events: none;
      background: white; border: 1px solid #ccc; border-radius: 4px;
      padding: 6px 10px; font-size: 13px; max-width: 320px;
    }
    #info div:first-child { font-weight: bold; }
  </style>
</head>
<body>
  <div id="cy"></div>
  <div id="info"></div>
  <script>
    (function() {
      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: {{.GraphJSON}},
        style: [
          {
            selector: 'node',
            style: { 'label': 'data(label)', 'font-size': '9px', 'text-valign': 'bottom' }
          },
          {
            selector: 'node[kind="repo"]',
            style: {
              'shape': 'round-rectangle', 'background-color': '#4A90D9',
              'width': 22, 'height': 22,
              'opacity': 'mapData(score, 0, 50, 0.45, 1)'
            }
          },
          {
            selector: 'node[kind="contributor"]',
            style: { 'background-color': '#E8923A', 'width': 28, 'height': 28 }
          },
          {
            selector: 'node.focal',
            style: { 'border-width': 4, 'border-color': '#C0392B', 'width': 44, 'height': 44, 'opacity': 1 }
          },
          {
            selector: 'edge',
            style: { 'line-color': '#95A5A6', 'width': 'mapData(thickness, 0, 50, 1, 8)' }
          }
        ],
        layout: {
          name: {{.Layout}},
          animate: false,
          idealEdgeLength: function(edge) { return edge.data('distance'); }
        }
      });

      const info = document.getElementById('info');

      function lines(d) {
        if (d.kind === 'repo') {
          return [d.label, d.description, d.language, d.stars && d.stars + ' stars'];
        }
        return [d.label, d.name, d.company, d.location,
          d.followers && d.followers + ' followers',
          d.commits && d.commits + ' recent commits'];
      }

      cy.on('mouseover', 'node', function(evt) {
        info.replaceChildren();
        lines(evt.target.data()).filter(Boolean).forEach(function(text) {
          const div = document.createElement('div');
          div.textContent = text;
          info.appendChild(div);
        });
        const pos = evt.renderedPosition;
        info.style.left = (pos.x + 15) + 'px';
        info.style.top = (pos.y + 15) + 'px';
        info.style.display = 'block';
      });
      cy.on('mouseout', 'node', function() { info.style.display = 'none'; });
      cy.on('dbltap', 'node', function(evt) {
        const url = evt.target.data('url');
        if (url) window.open(url, '_blank');
      });
    })();
  </script>
</body>
</html>`
