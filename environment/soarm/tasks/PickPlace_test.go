package tasks

import (
	"errors"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"
)

func newPickPlace(t *testing.T, opts ...PickPlaceOption) (*PickPlace,
	*fakePhysics) {
	phys := newFakePhysics(RedCube, BlueCube)
	task := NewPickPlace(1, golog.NewTestLogger(t), opts...)
	task.Register(phys)
	return task, phys
}

func TestPickPlacePlacement(t *testing.T) {
	t.Run("SpecifiedCentreCell", func(t *testing.T) {
		task, phys := newPickPlace(t)
		cell := 4
		test.That(t, task.SetCubeGridPosition(&cell), test.ShouldBeNil)
		test.That(t, task.InitializeEpisode(), test.ShouldBeNil)

		pos, quat := phys.object(BlueCube)
		test.That(t, pos, test.ShouldResemble, TableCenter)
		test.That(t, pos.Z, test.ShouldEqual, 0.05)

		placement := task.LastPlacement()
		test.That(t, placement.Cell, test.ShouldEqual, 4)
		test.That(t, placement.Specified, test.ShouldBeTrue)
		test.That(t, quat, test.ShouldResemble,
			RotationQuaternion(placement.Angle))
		test.That(t, RotationAngles, test.ShouldContain, placement.Angle)

		// The arm is reset along with the object
		test.That(t, phys.qpos[:ArmDOF], test.ShouldResemble, StartArmPose[:])
	})

	t.Run("InvalidCell", func(t *testing.T) {
		task, phys := newPickPlace(t)
		before := phys.QPos()

		for _, cell := range []int{9, -1} {
			c := cell
			err := task.SetCubeGridPosition(&c)
			test.That(t, errors.Is(err, ErrInvalidGridPosition),
				test.ShouldBeTrue)
		}
		test.That(t, task.CubeGridPosition(), test.ShouldBeNil)
		test.That(t, phys.resets, test.ShouldEqual, 0)
		test.That(t, phys.QPos(), test.ShouldResemble, before)

		// A rejected cell leaves a previous setting in place
		cell := 2
		test.That(t, task.SetCubeGridPosition(&cell), test.ShouldBeNil)
		bad := 12
		test.That(t, task.SetCubeGridPosition(&bad), test.ShouldNotBeNil)
		test.That(t, *task.CubeGridPosition(), test.ShouldEqual, 2)
	})

	t.Run("RandomCells", func(t *testing.T) {
		task, phys := newPickPlace(t)
		cells := make(map[int]bool)
		for i := 0; i < 200; i++ {
			test.That(t, task.InitializeEpisode(), test.ShouldBeNil)
			placement := task.LastPlacement()
			test.That(t, placement.Specified, test.ShouldBeFalse)

			want, err := GridPosition(placement.Cell)
			test.That(t, err, test.ShouldBeNil)
			pos, _ := phys.object(BlueCube)
			test.That(t, pos, test.ShouldResemble, want)
			cells[placement.Cell] = true
		}
		test.That(t, len(cells), test.ShouldEqual, GridCells)

		// Clearing the cell restores random placement
		cell := 0
		test.That(t, task.SetCubeGridPosition(&cell), test.ShouldBeNil)
		test.That(t, task.SetCubeGridPosition(nil), test.ShouldBeNil)
		test.That(t, task.CubeGridPosition(), test.ShouldBeNil)
	})

	t.Run("Seeded", func(t *testing.T) {
		a, _ := newPickPlace(t)
		b, _ := newPickPlace(t)
		for i := 0; i < 10; i++ {
			test.That(t, a.InitializeEpisode(), test.ShouldBeNil)
			test.That(t, b.InitializeEpisode(), test.ShouldBeNil)
			test.That(t, a.LastPlacement(), test.ShouldResemble,
				b.LastPlacement())
		}
	})

	t.Run("WallClockReseed", func(t *testing.T) {
		task, _ := newPickPlace(t, WithWallClockReseed(true))
		test.That(t, task.InitializeEpisode(), test.ShouldBeNil)
		test.That(t, task.LastPlacement().Cell, test.ShouldBeBetweenOrEqual,
			0, GridCells-1)
	})

	t.Run("MissingObject", func(t *testing.T) {
		phys := newFakePhysics(RedCube)
		task := NewPickPlace(1, golog.NewTestLogger(t))
		task.Register(phys)
		before, _ := phys.object(RedCube)

		test.That(t, task.InitializeEpisode(), test.ShouldBeNil)
		after, _ := phys.object(RedCube)
		test.That(t, after, test.ShouldResemble, before)
	})

	t.Run("OtherObject", func(t *testing.T) {
		task, phys := newPickPlace(t, WithObject(RedCube))
		cell := 8
		test.That(t, task.SetCubeGridPosition(&cell), test.ShouldBeNil)
		test.That(t, task.InitializeEpisode(), test.ShouldBeNil)

		want, _ := GridPosition(8)
		pos, _ := phys.object(RedCube)
		test.That(t, pos, test.ShouldResemble, want)
		test.That(t, task.Object(), test.ShouldEqual, RedCube)
	})
}

func TestPickPlaceReward(t *testing.T) {
	t.Run("NoContacts", func(t *testing.T) {
		task, _ := newPickPlace(t)
		test.That(t, task.Reward(), test.ShouldEqual, 0.0)
		test.That(t, task.ObjectPicked(), test.ShouldBeFalse)
	})

	t.Run("ObjectOnTableOnly", func(t *testing.T) {
		task, phys := newPickPlace(t)
		phys.touch("table", BlueCube)
		phys.touch("gripper_left", RedCube)
		test.That(t, task.Reward(), test.ShouldEqual, 0.0)
	})

	t.Run("Ladder", func(t *testing.T) {
		target := vec(0.1, 0.3, 0.2)
		task, phys := newPickPlace(t, WithTargetPosition(target))
		test.That(t, task.InitializeEpisode(), test.ShouldBeNil)

		var rewards []float64
		record := func() {
			r := task.Reward()
			test.That(t, []float64{0.0, 0.3, 0.6, 1.0}, test.ShouldContain, r)
			rewards = append(rewards, r)
		}

		// No contact
		phys.contacts = nil
		record()
		test.That(t, task.ObjectPicked(), test.ShouldBeFalse)

		// Touching, still on the table
		phys.touch("gripper_left", BlueCube)
		phys.touch(BlueCube, "table")
		record()
		test.That(t, task.ObjectPicked(), test.ShouldBeFalse)

		// Lifted
		phys.contacts = nil
		phys.touch(BlueCube, "gripper_left")
		phys.touch("gripper_right", BlueCube)
		phys.setObject(BlueCube, vec(0.0, 0.4, 0.2))
		record()
		test.That(t, task.ObjectPicked(), test.ShouldBeTrue)

		// Lifted and near the target
		phys.setObject(BlueCube, vec(0.12, 0.31, 0.25))
		record()

		test.That(t, rewards, test.ShouldResemble,
			[]float64{0.0, 0.3, 0.6, 1.0})
		for i := 1; i < len(rewards); i++ {
			test.That(t, rewards[i], test.ShouldBeGreaterThanOrEqualTo,
				rewards[i-1])
		}
		test.That(t, task.MaxReward(), test.ShouldEqual, 1.0)

		// Dropping the object keeps the progress flag until the next
		// episode
		phys.contacts = nil
		test.That(t, task.Reward(), test.ShouldEqual, 0.0)
		test.That(t, task.ObjectPicked(), test.ShouldBeTrue)

		test.That(t, task.InitializeEpisode(), test.ShouldBeNil)
		test.That(t, task.ObjectPicked(), test.ShouldBeFalse)
	})

	t.Run("NoTarget", func(t *testing.T) {
		task, phys := newPickPlace(t)
		_, ok := task.TargetPosition()
		test.That(t, ok, test.ShouldBeFalse)

		phys.touch("gripper_left", BlueCube)
		phys.setObject(BlueCube, vec(0, 0.4, 0.2))
		test.That(t, task.Reward(), test.ShouldEqual, 0.6)

		target := vec(0, 0.4, 0)
		task.SetTargetPosition(&target)
		test.That(t, task.Reward(), test.ShouldEqual, 1.0)

		task.SetTargetPosition(nil)
		test.That(t, task.Reward(), test.ShouldEqual, 0.6)
	})

	t.Run("TargetTolerance", func(t *testing.T) {
		task, phys := newPickPlace(t, WithTargetPosition(vec(0, 0.4, 0)))
		phys.touch("gripper_left", BlueCube)

		phys.setObject(BlueCube, vec(0.06, 0.4, 0.2))
		test.That(t, task.Reward(), test.ShouldEqual, 0.6)

		phys.setObject(BlueCube, vec(0.04, 0.44, 0.2))
		test.That(t, task.Reward(), test.ShouldEqual, 0.6)

		phys.setObject(BlueCube, vec(0.03, 0.42, 0.9))
		test.That(t, task.Reward(), test.ShouldEqual, 1.0)
	})
}
