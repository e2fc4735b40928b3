package hive

// Observer receives presentation events from the hive. Callbacks run
// synchronously inside the mutating call and must not mutate the hive.
type Observer interface {
	CellRevealed(c *Cell)
	CellOpened(c *Cell)
	CellClosed(c *Cell)
	CellVacated(c *Cell)
	HiveGrew(revealed int)
	StageAdvanced(index int, s Stage)
	PathBound(p *Path, c *Cell)
	PathDetached(p *Path, c *Cell)
}

// NopObserver ignores every event. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) CellRevealed(*Cell)        {}
func (NopObserver) CellOpened(*Cell)          {}
func (NopObserver) CellClosed(*Cell)          {}
func (NopObserver) CellVacated(*Cell)         {}
func (NopObserver) HiveGrew(int)              {}
func (NopObserver) StageAdvanced(int, Stage)  {}
func (NopObserver) PathBound(*Path, *Cell)    {}
func (NopObserver) PathDetached(*Path, *Cell) {}
