package layout

// Policy holds the layout knobs. Every dimension is a fixed per-item cell
// budget; containers are always sized bottom-up from their children and
// never negotiated top-down.
type Policy struct {
	// CellSize is the icon edge length for a single resource node.
	CellSize float64
	// CellGapX/CellGapY pad between cells inside a bucket.
	CellGapX float64
	CellGapY float64
	// LabelHeight reserves room under each icon for its caption.
	LabelHeight float64
	// LabelBudget truncates node captions so boxes stay uniform.
	LabelBudget int
	// InlineDetailMax is the largest bucket rendered item by item; above it
	// the bucket collapses to one summary node. Keeps diagrams legible for
	// accounts with hundreds of instances of one kind.
	InlineDetailMax int
	// BucketColumns wraps items inside subnet and VPC buckets.
	BucketColumns int
	// SubnetsPerRow wraps subnet boxes inside an availability zone.
	SubnetsPerRow int
	// OrphanColumns is the fixed orphan grid width in relationship mode.
	OrphanColumns int
	// RowWidth bounds a row of relationship groups before wrapping.
	RowWidth float64
}

func DefaultPolicy() Policy {
	return Policy{
		CellSize:        48,
		CellGapX:        12,
		CellGapY:        14,
		LabelHeight:     16,
		LabelBudget:     16,
		InlineDetailMax: 2,
		BucketColumns:   3,
		SubnetsPerRow:   3,
		OrphanColumns:   8,
		RowWidth:        1600,
	}
}

func (p Policy) pitchX() float64 { return p.CellSize + p.CellGapX }
func (p Policy) pitchY() float64 { return p.CellSize + p.LabelHeight + p.CellGapY }

// Truncate cuts a caption to the policy's character budget.
func Truncate(s string, budget int) string {
	if budget <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget])
}
