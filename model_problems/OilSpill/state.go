package OilSpill

import "fmt"

// State is the lifecycle position of a simulation run
type State uint8

const (
	Init State = iota
	GeometryReady
	Seeded
	Restored
	Stepping
	Finalizing
	Done
	Failed
)

var statePrintNames = []string{
	"Init", "GeometryReady", "Seeded", "Restored", "Stepping", "Finalizing", "Done", "Failed",
}

func (s State) String() string {
	if int(s) < len(statePrintNames) {
		return statePrintNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// allowed lists the states reachable from each state, Failed is reachable from any state
var allowed = map[State][]State{
	Init:          {GeometryReady},
	GeometryReady: {Seeded, Restored},
	Seeded:        {Stepping},
	Restored:      {Stepping},
	Stepping:      {Finalizing},
	Finalizing:    {Done},
}

func (c *OilSpill) transition(to State) (err error) {
	if to == Failed {
		c.state = Failed
		return
	}
	for _, s := range allowed[c.state] {
		if s == to {
			c.state = to
			return
		}
	}
	err = fmt.Errorf("invalid state transition from %s to %s", c.state, to)
	c.state = Failed
	return
}

// fail moves the run to Failed and passes err through
func (c *OilSpill) fail(err error) error {
	c.state = Failed
	return err
}
