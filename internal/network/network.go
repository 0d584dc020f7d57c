// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package network builds the Pfam-domain co-occurrence network around the
// Pacifastin core and quantifies the hub-versus-solitary transition
// between lineages.
package network

import (
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/dominikbraun/graph"

	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

// CoreDomain is the central node of every co-occurrence network.
const CoreDomain = "Pacifastin"

// Occurrence is one accessory domain observed alongside a Pacifastin core.
type Occurrence struct {
	SequenceID      string
	Lineage         types.Lineage
	AccessoryDomain string
}

// Network is a weighted undirected co-occurrence graph centered on the
// Pacifastin core.
type Network struct {
	g      graph.Graph[string, string]
	counts map[string]int
}

// Build constructs the co-occurrence network: one node per accessory
// domain, edges to the core weighted by co-occurrence count. Occurrences
// of the core itself are ignored.
func Build(occurrences []Occurrence) (*Network, error) {
	g := graph.New(graph.StringHash, graph.Weighted())
	if err := g.AddVertex(CoreDomain, graph.VertexAttribute("type", "Core")); err != nil {
		return nil, fmt.Errorf("adding core node: %w", err)
	}

	counts := make(map[string]int)
	for _, occ := range occurrences {
		domain := occ.AccessoryDomain
		if domain == "" || domain == CoreDomain {
			continue
		}
		if counts[domain] == 0 {
			if err := g.AddVertex(domain, graph.VertexAttribute("type", "Accessory")); err != nil {
				return nil, fmt.Errorf("adding node %s: %w", domain, err)
			}
			if err := g.AddEdge(CoreDomain, domain, graph.EdgeWeight(1)); err != nil {
				return nil, fmt.Errorf("adding edge to %s: %w", domain, err)
			}
		} else {
			if err := g.UpdateEdge(CoreDomain, domain, graph.EdgeWeight(counts[domain]+1)); err != nil {
				return nil, fmt.Errorf("updating edge to %s: %w", domain, err)
			}
		}
		counts[domain]++
	}
	return &Network{g: g, counts: counts}, nil
}

// Edge is one core-to-accessory link.
type Edge struct {
	Domain string
	Weight int
}

// Edges returns the core's edges sorted by weight descending, then by
// domain name.
func (n *Network) Edges() ([]Edge, error) {
	var out []Edge
	for domain := range n.counts {
		e, err := n.g.Edge(CoreDomain, domain)
		if err != nil {
			return nil, fmt.Errorf("reading edge to %s: %w", domain, err)
		}
		out = append(out, Edge{Domain: domain, Weight: e.Properties.Weight})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Domain < out[j].Domain
	})
	return out, nil
}

// HubMetrics summarizes the connectivity of the core node.
type HubMetrics struct {
	Lineage     types.Lineage
	Degree      int
	TotalWeight int

	// Profile is "Hub" when the core has accessory partners, "Solitary"
	// otherwise.
	Profile string
}

// Hub computes the core node's connectivity metrics.
func (n *Network) Hub(lineage types.Lineage) (HubMetrics, error) {
	edges, err := n.Edges()
	if err != nil {
		return HubMetrics{}, err
	}
	m := HubMetrics{Lineage: lineage, Degree: len(edges), Profile: "Solitary"}
	for _, e := range edges {
		m.TotalWeight += e.Weight
	}
	if m.Degree > 0 {
		m.Profile = "Hub"
	}
	return m, nil
}

// CompareLineages builds one network per lineage and returns the hub
// metrics side by side, sorted by lineage.
func CompareLineages(occurrences []Occurrence) ([]HubMetrics, error) {
	byLineage := make(map[types.Lineage][]Occurrence)
	for _, occ := range occurrences {
		byLineage[occ.Lineage] = append(byLineage[occ.Lineage], occ)
	}

	var out []HubMetrics
	for lineage, subset := range byLineage {
		n, err := Build(subset)
		if err != nil {
			return nil, fmt.Errorf("building %s network: %w", lineage, err)
		}
		m, err := n.Hub(lineage)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lineage < out[j].Lineage })
	return out, nil
}

// ReadOccurrencesCSV reads the domain architecture file with columns
// Sequence_ID, Lineage, Accessory_Domain.
func ReadOccurrencesCSV(path string) ([]Occurrence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening occurrences %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: no occurrence rows", path)
	}

	var out []Occurrence
	for i, row := range rows[1:] {
		if len(row) != 3 {
			return nil, fmt.Errorf("%s row %d: expected 3 columns, got %d", path, i+2, len(row))
		}
		out = append(out, Occurrence{
			SequenceID:      row[0],
			Lineage:         types.Lineage(row[1]),
			AccessoryDomain: row[2],
		})
	}
	return out, nil
}

// WriteEdgeListCSV writes the weighted edge list of the network.
func WriteEdgeListCSV(path string, n *Network) error {
	edges, err := n.Edges()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating edge list %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"Source", "Target", "Weight"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, e := range edges {
		if err := cw.Write([]string{CoreDomain, e.Domain, strconv.Itoa(e.Weight)}); err != nil {
			return fmt.Errorf("writing edge to %s: %w", e.Domain, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// GEXF document structure, enough for Gephi import.
type gexfNode struct {
	ID    string `xml:"id,attr"`
	Label string `xml:"label,attr"`
}

type gexfEdge struct {
	ID     int    `xml:"id,attr"`
	Source string `xml:"source,attr"`
	Target string `xml:"target,attr"`
	Weight int    `xml:"weight,attr"`
}

type gexfGraph struct {
	DefaultEdgeType string     `xml:"defaultedgetype,attr"`
	Nodes           []gexfNode `xml:"nodes>node"`
	Edges           []gexfEdge `xml:"edges>edge"`
}

type gexfDoc struct {
	XMLName xml.Name  `xml:"gexf"`
	XMLNS   string    `xml:"xmlns,attr"`
	Version string    `xml:"version,attr"`
	Graph   gexfGraph `xml:"graph"`
}

// WriteGEXF exports the network for Gephi.
func WriteGEXF(path string, n *Network) error {
	edges, err := n.Edges()
	if err != nil {
		return err
	}

	doc := gexfDoc{
		XMLNS:   "http://www.gexf.net/1.2draft",
		Version: "1.2",
		Graph:   gexfGraph{DefaultEdgeType: "undirected"},
	}
	doc.Graph.Nodes = append(doc.Graph.Nodes, gexfNode{ID: CoreDomain, Label: CoreDomain})
	for i, e := range edges {
		doc.Graph.Nodes = append(doc.Graph.Nodes, gexfNode{ID: e.Domain, Label: e.Domain})
		doc.Graph.Edges = append(doc.Graph.Edges, gexfEdge{
			ID:     i,
			Source: CoreDomain,
			Target: e.Domain,
			Weight: e.Weight,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating GEXF %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(xml.Header); err != nil {
		return fmt.Errorf("writing XML header: %w", err)
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding GEXF: %w", err)
	}
	return enc.Close()
}
