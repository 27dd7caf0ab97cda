package game

import "fmt"

// Vertical stack geometry, in yards.
const (
	stackGap     = 4
	markOffsetX  = 1
	markOffsetY  = 3
	coverOffsetX = 1
	coverOffsetY = 3
)

// VerticalStack lines perSide players up on each team: a thrower 10 yards
// from its own end zone with the mark beside it outside catch range, and the other offenders in a
// stack starting stackOffset yards downfield, each with a labelled defender
// on its downfield shoulder. Pairs are labelled "1", "2", ...
func VerticalStack(f Field, perSide int, stackOffset float64) *State {
	st := NewState(f)
	if perSide < 1 {
		return st
	}
	tx, ty := st.Field.OwnEndZoneLine()-10, st.Field.CenterY()
	st.AddPlayer(NewPlayer("o1", TeamOffense, tx, ty))
	st.AddPlayer(NewPlayer("d1", TeamDefense, tx-markOffsetX, ty+markOffsetY))
	for i := 1; i < perSide; i++ {
		label := fmt.Sprint(i)
		x := tx - stackOffset - float64(i-1)*stackGap
		o := st.AddPlayer(NewPlayer(fmt.Sprintf("o%d", i+1), TeamOffense, x, ty))
		o.Label = label
		d := st.AddPlayer(NewPlayer(fmt.Sprintf("d%d", i+1), TeamDefense, x-coverOffsetX, ty+coverOffsetY))
		d.Label = label
	}
	// o1 is on the field, so this cannot fail.
	_ = st.CatchDisc("o1")
	return st
}
