package graph

import (
	"log/slog"

	"github.com/mr1hm/go-carbon-tracker/internal/models"
)

// DestinationPrefix is prepended to a shipment id to form its destination node id.
const DestinationPrefix = "DEST_"

type NodeKind int

const (
	NodeKindSupplier NodeKind = iota + 1
	NodeKindDestination
)

func (k NodeKind) String() string {
	switch k {
	case NodeKindSupplier:
		return "supplier"
	case NodeKindDestination:
		return "destination"
	default:
		return "unknown"
	}
}

// Node is either a *SupplierNode or a *DestinationNode.
type Node interface {
	ID() string
	Kind() NodeKind
	Location() models.Coordinates
}

type SupplierNode struct {
	SupplierID  string
	Name        string
	Country     string
	Coordinates models.Coordinates
	// Known is false for placeholder nodes created for a supplier id that
	// shipments reference but the supplier table does not contain.
	Known bool
}

func (n *SupplierNode) ID() string                   { return n.SupplierID }
func (n *SupplierNode) Kind() NodeKind               { return NodeKindSupplier }
func (n *SupplierNode) Location() models.Coordinates { return n.Coordinates }

type DestinationNode struct {
	ShipmentID  string
	Coordinates models.Coordinates
}

func (n *DestinationNode) ID() string                   { return DestinationID(n.ShipmentID) }
func (n *DestinationNode) Kind() NodeKind               { return NodeKindDestination }
func (n *DestinationNode) Location() models.Coordinates { return n.Coordinates }

type Edge struct {
	From         string
	To           string
	ShipmentID   string
	Mode         models.TransportMode
	DistanceKm   float64
	WeightTonnes float64
	EmissionsKg  float64
}

// nodeKey qualifies ids by kind: a supplier id may spell the same string as a
// destination id (e.g. a supplier named "DEST_SH1") without the two colliding.
type nodeKey struct {
	kind NodeKind
	id   string
}

// Graph is a directed supplier -> destination graph with one edge per shipment.
// Edge sources are always supplier ids and edge targets destination ids.
type Graph struct {
	nodes map[nodeKey]Node
	order []nodeKey
	edges []Edge
	out   map[string][]int // supplier id -> edge indexes
}

func DestinationID(shipmentID string) string {
	return DestinationPrefix + shipmentID
}

func newGraph() *Graph {
	return &Graph{
		nodes: make(map[nodeKey]Node),
		out:   make(map[string][]int),
	}
}

// Build creates one supplier node per supplier, one destination node per
// shipment and one edge per shipment. A shipment whose supplier id is not in
// the supplier table still gets an edge; its source becomes a placeholder
// supplier node with Known set to false.
func Build(suppliers []models.Supplier, shipments []models.EnrichedShipment) *Graph {
	g := newGraph()

	for _, s := range suppliers {
		g.addNode(&SupplierNode{
			SupplierID:  s.ID,
			Name:        s.Name,
			Country:     s.Country,
			Coordinates: s.Coordinates(),
			Known:       true,
		})
	}

	for _, sh := range shipments {
		if _, ok := g.nodes[nodeKey{NodeKindSupplier, sh.SupplierID}]; !ok {
			slog.Warn("shipment references unknown supplier", "shipment_id", sh.ID, "supplier_id", sh.SupplierID)
			g.addNode(&SupplierNode{SupplierID: sh.SupplierID, Name: sh.SupplierID})
		}

		dest := &DestinationNode{ShipmentID: sh.ID, Coordinates: sh.Destination()}
		g.addNode(dest)

		g.out[sh.SupplierID] = append(g.out[sh.SupplierID], len(g.edges))
		g.edges = append(g.edges, Edge{
			From:         sh.SupplierID,
			To:           dest.ID(),
			ShipmentID:   sh.ID,
			Mode:         sh.Mode,
			DistanceKm:   sh.DistanceKm,
			WeightTonnes: sh.WeightTonnes,
			EmissionsKg:  sh.EmissionsKg,
		})
	}

	return g
}

// addNode inserts or replaces a node of the same kind and id, keeping its
// first insertion position.
func (g *Graph) addNode(n Node) {
	k := nodeKey{n.Kind(), n.ID()}
	if _, ok := g.nodes[k]; !ok {
		g.order = append(g.order, k)
	}
	g.nodes[k] = n
}

// Node looks up a node by kind and id. Edge.From resolves with
// NodeKindSupplier and Edge.To with NodeKindDestination.
func (g *Graph) Node(kind NodeKind, id string) (Node, bool) {
	n, ok := g.nodes[nodeKey{kind, id}]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, g.nodes[k])
	}
	return out
}

func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

func (g *Graph) OutEdges(id string) []Edge {
	idx := g.out[id]
	out := make([]Edge, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.edges[i])
	}
	return out
}

func (g *Graph) NodeCount() int { return len(g.nodes) }
func (g *Graph) EdgeCount() int { return len(g.edges) }
