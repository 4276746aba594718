package engine

import (
	"math"
	"sort"

	"home-layout/internal/layout/models"
)

// ============================================================
// Adjacency Graph
// ============================================================

// Wall: общий участок стены между двумя соседними комнатами.
type Wall struct {
	From  string
	To    string
	Side  models.Direction // сторона комнаты From
	Start models.Point
	End   models.Point
}

type Graph struct {
	rooms map[string]models.Room
	edges map[string][]Wall
}

// BuildGraph строит граф соседства: ребро есть, если комнаты касаются стенами.
func BuildGraph(rooms []models.Room) *Graph {
	g := &Graph{
		rooms: make(map[string]models.Room, len(rooms)),
		edges: make(map[string][]Wall, len(rooms)),
	}

	for _, r := range rooms {
		g.rooms[r.ID] = r
	}

	for i := 0; i < len(rooms); i++ {
		for j := 0; j < len(rooms); j++ {
			if i == j {
				continue
			}
			a, b := rooms[i], rooms[j]
			for _, dir := range models.Directions {
				if Touches(a, b, dir) {
					g.edges[a.ID] = append(g.edges[a.ID], sharedWall(a, b, dir))
				}
			}
		}
	}

	return g
}

// Neighbours возвращает id соседей комнаты (без повторов, отсортированные).
func (g *Graph) Neighbours(id string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, w := range g.edges[id] {
		if _, ok := seen[w.To]; ok {
			continue
		}
		seen[w.To] = struct{}{}
		out = append(out, w.To)
	}
	sort.Strings(out)
	return out
}

// Degree считает соседей комнаты, не учитывая комнаты из exclude.
func (g *Graph) Degree(id string, exclude ...string) int {
	n := 0
	for _, other := range g.Neighbours(id) {
		if containsID(exclude, other) {
			continue
		}
		n++
	}
	return n
}

// Walls возвращает каждый общий участок стены один раз.
func (g *Graph) Walls() []Wall {
	var out []Wall
	for _, walls := range g.edges {
		for _, w := range walls {
			if w.From < w.To {
				out = append(out, w)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

func sharedWall(a, b models.Room, dir models.Direction) Wall {
	w := Wall{From: a.ID, To: b.ID, Side: dir}
	switch dir {
	case models.Right, models.Left:
		x := a.Right()
		if dir == models.Left {
			x = a.Left()
		}
		w.Start = models.Point{X: x, Y: math.Max(a.Top(), b.Top())}
		w.End = models.Point{X: x, Y: math.Min(a.Bottom(), b.Bottom())}
	default:
		y := a.Bottom()
		if dir == models.Top {
			y = a.Top()
		}
		w.Start = models.Point{X: math.Max(a.Left(), b.Left()), Y: y}
		w.End = models.Point{X: math.Min(a.Right(), b.Right()), Y: y}
	}
	return w
}

func containsID(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
