package vrp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteArrivalTimes(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: SourceID})
	g.AddNode(Node{ID: SinkID, TWUpper: 100})
	g.AddNode(Node{ID: "a", ServiceTime: 5, TWLower: 30, TWUpper: 40})
	g.AddNode(Node{ID: "b", TWUpper: 60})
	g.AddEdge(SourceID, "a", 1, 10)
	g.AddEdge("a", "b", 1, 10)
	g.AddEdge("b", SinkID, 1, 10)

	p := NewProblem(g)
	p.TimeWindows = true
	r := &Route{Nodes: []string{SourceID, "a", "b", SinkID}}

	times := p.RouteArrivalTimes(r)
	require.Len(t, times, 4)
	assert.InDelta(t, 0.0, times[0], 1e-9)
	// Arrival 10 waits for the window at a to open.
	assert.InDelta(t, 30.0, times[1], 1e-9)
	// Departure includes the service time at a.
	assert.InDelta(t, 45.0, times[2], 1e-9)
	assert.InDelta(t, 55.0, times[3], 1e-9)
}

func TestRouteDurationAndLoad(t *testing.T) {
	p := NewProblem(toyGraph())
	r := &Route{Nodes: []string{SourceID, "1", "2", SinkID}}
	assert.InDelta(t, 60.0, p.RouteDuration(r), 1e-9)
	assert.InDelta(t, 10.0, p.RouteLoad(r), 1e-9)
}

func TestRouteKeyAndCustomers(t *testing.T) {
	r := &Route{Nodes: []string{SourceID, "1", "2", SinkID}, VehicleType: 1}
	assert.Equal(t, []string{"1", "2"}, r.Customers())
	same := &Route{Nodes: []string{SourceID, "1", "2", SinkID}, VehicleType: 1}
	assert.Equal(t, r.Key(), same.Key())
	other := &Route{Nodes: []string{SourceID, "1", "2", SinkID}, VehicleType: 0}
	assert.NotEqual(t, r.Key(), other.Key())
}

func TestBestRoutesByNode(t *testing.T) {
	sol := &Solution{Routes: []*Route{
		{Nodes: []string{SourceID, "1", "2", SinkID}},
		{Nodes: []string{SourceID, "2", "3", SinkID}},
	}}
	byNode := sol.BestRoutesByNode()
	assert.Equal(t, []int{0}, byNode["1"])
	assert.Equal(t, []int{0, 1}, byNode["2"])
	assert.Equal(t, []int{1}, byNode["3"])
}
