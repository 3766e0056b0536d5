package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksumSinglePane(t *testing.T) {
	require.Equal(t, uint16(0xb25d), Checksum("80x24,0,0,0"))
}

func TestChecksumEmptyString(t *testing.T) {
	require.Equal(t, uint16(0), Checksum(""))
}

func TestChecksumIs16Bit(t *testing.T) {
	long := ""
	for i := 0; i < 1000; i++ {
		long += "a]b[c{d}e,f"
	}
	require.LessOrEqual(t, Checksum(long), uint16(0xffff))
}

func TestChecksumSingleByte(t *testing.T) {
	require.Equal(t, uint16(65), Checksum("A"))
}

func TestChecksumTwoBytes(t *testing.T) {
	require.Equal(t, uint16(32866), Checksum("AB"))
}

func TestSinglePaneDescription(t *testing.T) {
	root := Node{Kind: KindPane, PaneID: 0, Width: 80, Height: 24, Left: 0, Top: 0}
	require.Equal(t, "b25d,80x24,0,0,0", Generate(root))
}

func expectGenerated(t *testing.T, root Node, desc string) {
	t.Helper()
	want := fmt.Sprintf("%04x,%s", Checksum(desc), desc)
	require.Equal(t, want, Generate(root))
}

func TestHorizontalSplitTwoPanes(t *testing.T) {
	root := Node{Kind: KindHorizontalSplit, Width: 160, Height: 40, Left: 0, Top: 0, Children: []Node{
		{Kind: KindPane, PaneID: 0, Width: 80, Height: 40, Left: 0, Top: 0},
		{Kind: KindPane, PaneID: 1, Width: 79, Height: 40, Left: 81, Top: 0},
	}}
	expectGenerated(t, root, "160x40,0,0{80x40,0,0,0,79x40,81,0,1}")
}

func TestVerticalSplitTwoPanes(t *testing.T) {
	root := Node{Kind: KindVerticalSplit, Width: 80, Height: 48, Left: 0, Top: 0, Children: []Node{
		{Kind: KindPane, PaneID: 0, Width: 80, Height: 24, Left: 0, Top: 0},
		{Kind: KindPane, PaneID: 1, Width: 80, Height: 23, Left: 0, Top: 25},
	}}
	expectGenerated(t, root, "80x48,0,0[80x24,0,0,0,80x23,0,25,1]")
}

func TestNestedSplit(t *testing.T) {
	root := Node{Kind: KindHorizontalSplit, Width: 160, Height: 40, Left: 0, Top: 0, Children: []Node{
		{Kind: KindPane, PaneID: 0, Width: 80, Height: 40, Left: 0, Top: 0},
		{Kind: KindVerticalSplit, Width: 79, Height: 40, Left: 81, Top: 0, Children: []Node{
			{Kind: KindPane, PaneID: 1, Width: 79, Height: 20, Left: 81, Top: 0},
			{Kind: KindPane, PaneID: 2, Width: 79, Height: 19, Left: 81, Top: 21},
		}},
	}}
	expectGenerated(t, root, "160x40,0,0{80x40,0,0,0,79x40,81,0[79x20,81,0,1,79x19,81,21,2]}")
}

func TestDeeplyNestedSplit(t *testing.T) {
	root := Node{Kind: KindHorizontalSplit, Width: 158, Height: 40, Left: 0, Top: 0, Children: []Node{
		{Kind: KindPane, PaneID: 69, Width: 79, Height: 40, Left: 0, Top: 0},
		{Kind: KindVerticalSplit, Width: 78, Height: 40, Left: 80, Top: 0, Children: []Node{
			{Kind: KindPane, PaneID: 70, Width: 78, Height: 20, Left: 80, Top: 0},
			{Kind: KindHorizontalSplit, Width: 78, Height: 19, Left: 80, Top: 21, Children: []Node{
				{Kind: KindPane, PaneID: 71, Width: 39, Height: 19, Left: 80, Top: 21},
				{Kind: KindPane, PaneID: 72, Width: 38, Height: 19, Left: 120, Top: 21},
			}},
		}},
	}}
	expectGenerated(t, root, "158x40,0,0{79x40,0,0,69,78x40,80,0[78x20,80,0,70,78x19,80,21{39x19,80,21,71,38x19,120,21,72}]}")
}

func TestSinglePaneLargeID(t *testing.T) {
	root := Node{Kind: KindPane, PaneID: 999, Width: 200, Height: 50, Left: 10, Top: 5}
	expectGenerated(t, root, "200x50,10,5,999")
}

func TestSinglePaneNonzeroOrigin(t *testing.T) {
	root := Node{Kind: KindPane, PaneID: 7, Width: 40, Height: 20, Left: 41, Top: 25}
	expectGenerated(t, root, "40x20,41,25,7")
}

func TestHorizontalSplitThreePanes(t *testing.T) {
	root := Node{Kind: KindHorizontalSplit, Width: 120, Height: 30, Left: 0, Top: 0, Children: []Node{
		{Kind: KindPane, PaneID: 0, Width: 40, Height: 30, Left: 0, Top: 0},
		{Kind: KindPane, PaneID: 1, Width: 39, Height: 30, Left: 41, Top: 0},
		{Kind: KindPane, PaneID: 2, Width: 39, Height: 30, Left: 81, Top: 0},
	}}
	expectGenerated(t, root, "120x30,0,0{40x30,0,0,0,39x30,41,0,1,39x30,81,0,2}")
}

func TestVerticalSplitThreePanes(t *testing.T) {
	root := Node{Kind: KindVerticalSplit, Width: 80, Height: 60, Left: 0, Top: 0, Children: []Node{
		{Kind: KindPane, PaneID: 0, Width: 80, Height: 20, Left: 0, Top: 0},
		{Kind: KindPane, PaneID: 1, Width: 80, Height: 19, Left: 0, Top: 21},
		{Kind: KindPane, PaneID: 2, Width: 80, Height: 19, Left: 0, Top: 41},
	}}
	expectGenerated(t, root, "80x60,0,0[80x20,0,0,0,80x19,0,21,1,80x19,0,41,2]")
}

func TestChecksumKnownTmuxLayout120x29(t *testing.T) {
	require.Equal(t, uint16(0xcafd), Checksum("120x29,0,0,0"))
}

func TestGenerateMatchesKnownTmux80x24(t *testing.T) {
	root := Node{Kind: KindPane, PaneID: 0, Width: 80, Height: 24, Left: 0, Top: 0}
	require.Equal(t, "b25d,80x24,0,0,0", Generate(root))
}

func TestGenerateMatchesKnownTmux120x29(t *testing.T) {
	root := Node{Kind: KindPane, PaneID: 0, Width: 120, Height: 29, Left: 0, Top: 0}
	require.Equal(t, "cafd,120x29,0,0,0", Generate(root))
}

func TestHorizontalSplitSingleChild(t *testing.T) {
	root := Node{Kind: KindHorizontalSplit, Width: 80, Height: 24, Left: 0, Top: 0, Children: []Node{
		{Kind: KindPane, PaneID: 0, Width: 80, Height: 24, Left: 0, Top: 0},
	}}
	expectGenerated(t, root, "80x24,0,0{80x24,0,0,0}")
}

func TestVerticalSplitSingleChild(t *testing.T) {
	root := Node{Kind: KindVerticalSplit, Width: 80, Height: 24, Left: 0, Top: 0, Children: []Node{
		{Kind: KindPane, PaneID: 5, Width: 80, Height: 24, Left: 0, Top: 0},
	}}
	expectGenerated(t, root, "80x24,0,0[80x24,0,0,5]")
}

func TestChecksumFormatHasLeadingZeros(t *testing.T) {
	desc := "1x1,0,0,0"
	root := Node{Kind: KindPane, PaneID: 0, Width: 1, Height: 1, Left: 0, Top: 0}
	result := Generate(root)
	expectGenerated(t, root, desc)
	require.Equal(t, 4, indexOfComma(result))
}

func indexOfComma(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			return i
		}
	}
	return -1
}
