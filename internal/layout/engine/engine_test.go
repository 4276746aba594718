package engine

import (
	"testing"

	"home-layout/internal/layout/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func room(id string, x, y, w, h float64) models.Room {
	return models.Room{
		ID:       id,
		Name:     id,
		Position: models.Point{X: x, Y: y},
		Size:     models.Size{Width: w, Height: h},
	}
}

func TestOverlaps(t *testing.T) {
	base := room("a", 0, 0, 120, 120)

	assert.True(t, Overlaps(base, room("b", 50, 50, 120, 120)))
	assert.True(t, Overlaps(base, room("b", 10, 10, 20, 20)), "containment is overlap")
	assert.False(t, Overlaps(base, room("b", 120, 0, 120, 120)), "touching right edge")
	assert.False(t, Overlaps(base, room("b", 0, 120, 120, 120)), "touching bottom edge")
	assert.False(t, Overlaps(base, room("b", 120, 120, 50, 50)), "touching corner")
	assert.False(t, Overlaps(base, room("b", 300, 300, 50, 50)))
}

func TestIsAdjacent(t *testing.T) {
	a := room("a", 0, 0, 120, 120)
	b := room("b", 120, 0, 120, 120)
	rooms := []models.Room{a, b}

	assert.True(t, IsAdjacent(rooms, a, models.Right))
	assert.True(t, IsAdjacent(rooms, b, models.Left))
	assert.False(t, IsAdjacent(rooms, a, models.Left))
	assert.False(t, IsAdjacent(rooms, a, models.Top))
	assert.False(t, IsAdjacent(rooms, a, models.Bottom))
}

func TestIsAdjacent_Tolerance(t *testing.T) {
	a := room("a", 0, 0, 120, 120)

	assert.True(t, IsAdjacent([]models.Room{a, room("b", 123, 0, 100, 100)}, a, models.Right))
	assert.True(t, IsAdjacent([]models.Room{a, room("b", 0, 117.5, 100, 100)}, a, models.Bottom))
	assert.False(t, IsAdjacent([]models.Room{a, room("b", 130, 0, 100, 100)}, a, models.Right))
}

func TestIsAdjacent_RequiresPerpendicularOverlap(t *testing.T) {
	a := room("a", 0, 0, 120, 120)

	// касается только углом
	corner := room("b", 120, 120, 100, 100)
	assert.False(t, IsAdjacent([]models.Room{a, corner}, a, models.Right))
	assert.False(t, IsAdjacent([]models.Room{a, corner}, a, models.Bottom))

	partial := room("b", 120, 100, 100, 100)
	assert.True(t, IsAdjacent([]models.Room{a, partial}, a, models.Right))
}

func TestCanAddRoom(t *testing.T) {
	rooms := []models.Room{room("a", 0, 0, 120, 120)}

	err := CanAddRoom(rooms, room("b", 50, 50, 120, 120))
	require.ErrorIs(t, err, ErrPositionOccupied)

	require.NoError(t, CanAddRoom(rooms, room("b", 120, 0, 120, 120)))
}

func TestCanAddAdjacent(t *testing.T) {
	a := room("a", 0, 0, 120, 120)
	rooms := []models.Room{a, room("b", 120, 0, 120, 120)}

	require.ErrorIs(t, CanAddAdjacent(rooms, a, models.Right), ErrWallOccupied)
	require.NoError(t, CanAddAdjacent(rooms, a, models.Bottom))
}

func TestPlaceAdjacent(t *testing.T) {
	parent := room("a", 0, 0, 120, 120)
	size := models.Size{Width: 120, Height: 120}

	assert.Equal(t, models.Point{X: 120, Y: 0}, PlaceAdjacent(parent, models.Right, size))
	assert.Equal(t, models.Point{X: -120, Y: 0}, PlaceAdjacent(parent, models.Left, size))
	assert.Equal(t, models.Point{X: 0, Y: 120}, PlaceAdjacent(parent, models.Bottom, size))
	assert.Equal(t, models.Point{X: 0, Y: -120}, PlaceAdjacent(parent, models.Top, size))
}

func TestAvailableDirections(t *testing.T) {
	a := room("a", 0, 0, 120, 120)
	rooms := []models.Room{a, room("b", 120, 0, 120, 120), room("c", -60, 150, 100, 100)}

	// справа сосед, снизу место частично занято комнатой c
	assert.Equal(t, []models.Direction{models.Top, models.Left}, AvailableDirections(rooms, a))
}

func TestCanDeleteRoom_TwoRoomsAlwaysAllowed(t *testing.T) {
	rooms := []models.Room{room("a", 0, 0, 120, 120), room("b", 120, 0, 120, 120)}
	assert.True(t, CanDeleteRoom(rooms, "a"))
	assert.True(t, CanDeleteRoom(rooms, "b"))

	apart := []models.Room{room("a", 0, 0, 120, 120), room("b", 500, 500, 120, 120)}
	assert.True(t, CanDeleteRoom(apart, "a"))
}

func TestCanDeleteRoom_CollinearMiddleRejected(t *testing.T) {
	rooms := []models.Room{
		room("a", 0, 0, 120, 120),
		room("b", 120, 0, 120, 120),
		room("c", 240, 0, 120, 120),
	}

	assert.False(t, CanDeleteRoom(rooms, "b"))
	assert.True(t, CanDeleteRoom(rooms, "a"))
	assert.True(t, CanDeleteRoom(rooms, "c"))
}

func TestCanDeleteRoom_NeighbourKeepsOtherAdjacency(t *testing.T) {
	// a b
	// c d: удаление b оставляет a соседом c, d соседом c
	rooms := []models.Room{
		room("a", 0, 0, 120, 120),
		room("b", 120, 0, 120, 120),
		room("c", 0, 120, 120, 120),
		room("d", 120, 120, 120, 120),
	}

	assert.True(t, CanDeleteRoom(rooms, "b"))
}

func TestCanDeleteRoom_UnknownID(t *testing.T) {
	rooms := []models.Room{
		room("a", 0, 0, 120, 120),
		room("b", 120, 0, 120, 120),
		room("c", 240, 0, 120, 120),
	}
	assert.False(t, CanDeleteRoom(rooms, "zzz"))
	assert.False(t, CanDeleteRoom(rooms[:2], "zzz"))
	assert.False(t, CanDeleteRoom(nil, "zzz"))
}

func TestResize(t *testing.T) {
	rooms := []models.Room{room("a", 0, 0, 120, 120), room("b", 240, 0, 120, 120)}

	out, err := Resize(rooms, "a", models.AxisWidth, 100)
	require.NoError(t, err)
	assert.Equal(t, 220.0, out[0].Size.Width)
	assert.Equal(t, 120.0, rooms[0].Size.Width, "input must not be mutated")

	out, err = Resize(rooms, "a", models.AxisHeight, -500)
	require.NoError(t, err)
	assert.Equal(t, MinRoomSize, out[0].Size.Height)

	out, err = Resize(rooms, "b", models.AxisHeight, 1000)
	require.NoError(t, err)
	assert.Equal(t, MaxRoomSize, out[1].Size.Height)
}

func TestResize_OutOfRangeRoom(t *testing.T) {
	rooms := []models.Room{room("wide", 0, 0, 400, 50)}

	out, err := Resize(rooms, "wide", models.AxisWidth, 10)
	require.NoError(t, err)
	assert.Equal(t, 400.0, out[0].Size.Width, "grow does not shrink an oversized room")

	out, err = Resize(rooms, "wide", models.AxisWidth, -10)
	require.NoError(t, err)
	assert.Equal(t, 390.0, out[0].Size.Width)

	out, err = Resize(rooms, "wide", models.AxisHeight, -10)
	require.NoError(t, err)
	assert.Equal(t, 50.0, out[0].Size.Height, "shrink does not grow an undersized room")

	out, err = Resize(rooms, "wide", models.AxisHeight, 10)
	require.NoError(t, err)
	assert.Equal(t, 60.0, out[0].Size.Height)

	out, err = Resize(rooms, "wide", models.AxisHeight, 500)
	require.NoError(t, err)
	assert.Equal(t, MaxRoomSize, out[0].Size.Height)
}

func TestResize_OverlapRejected(t *testing.T) {
	rooms := []models.Room{room("a", 0, 0, 120, 120), room("b", 150, 0, 120, 120)}

	out, err := Resize(rooms, "a", models.AxisWidth, 50)
	require.ErrorIs(t, err, ErrPositionOccupied)
	assert.Nil(t, out)
	assert.Equal(t, 120.0, rooms[0].Size.Width)
}

func TestResize_Errors(t *testing.T) {
	rooms := []models.Room{room("a", 0, 0, 120, 120)}

	_, err := Resize(rooms, "nope", models.AxisWidth, 10)
	require.ErrorIs(t, err, ErrRoomNotFound)

	_, err = Resize(rooms, "a", models.Axis("depth"), 10)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(nil))
	require.NoError(t, Validate([]models.Room{room("a", 0, 0, 120, 120), room("b", 120, 0, 120, 120)}))

	err := Validate([]models.Room{room("a", 0, 0, 120, 120), room("b", 60, 0, 120, 120)})
	require.ErrorIs(t, err, ErrPositionOccupied)

	require.Error(t, Validate([]models.Room{room("a", 0, 0, 120, 120), room("a", 500, 0, 120, 120)}))
	require.Error(t, Validate([]models.Room{room("", 0, 0, 120, 120)}))
	require.Error(t, Validate([]models.Room{room("a", 0, 0, 0, 120)}))
}

func TestGraph(t *testing.T) {
	rooms := []models.Room{
		room("a", 0, 0, 120, 120),
		room("b", 120, 0, 120, 120),
		room("c", 120, 120, 120, 120),
	}
	g := BuildGraph(rooms)

	assert.Equal(t, []string{"b"}, g.Neighbours("a"))
	assert.Equal(t, []string{"a", "c"}, g.Neighbours("b"))
	assert.Equal(t, 1, g.Degree("b", "a"))
	assert.Equal(t, 0, g.Degree("a", "b"))

	walls := g.Walls()
	require.Len(t, walls, 2)
	assert.Equal(t, Wall{From: "a", To: "b", Side: models.Right,
		Start: models.Point{X: 120, Y: 0}, End: models.Point{X: 120, Y: 120}}, walls[0])
	assert.Equal(t, "b", walls[1].From)
	assert.Equal(t, "c", walls[1].To)
	assert.Equal(t, models.Bottom, walls[1].Side)
}

func TestValidLayoutHasNoOverlappingPairs(t *testing.T) {
	rooms := []models.Room{room("a", 0, 0, 120, 120)}
	for i, dir := range []models.Direction{models.Right, models.Bottom, models.Left, models.Top} {
		parent := rooms[len(rooms)-1]
		if CanAddAdjacent(rooms, parent, dir) != nil {
			continue
		}
		size := models.Size{Width: DefaultRoomSize, Height: DefaultRoomSize}
		next := models.Room{ID: string(rune('b' + i)), Position: PlaceAdjacent(parent, dir, size), Size: size}
		if CanAddRoom(rooms, next) != nil {
			continue
		}
		rooms = append(rooms, next)
	}

	for i := range rooms {
		for j := i + 1; j < len(rooms); j++ {
			assert.False(t, Overlaps(rooms[i], rooms[j]), "%s/%s", rooms[i].ID, rooms[j].ID)
		}
	}
}
