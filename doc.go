// Package thicket keeps the hierarchy-dependent attributes of a retained-mode
// GUI tree current, recomputing only what changed since the last frame.
//
// A [Scene] owns an arena [Tree] of nodes addressed by generation-checked
// [NodeID] values. Each node carries local values written by the layout and
// style systems: opacity, display/visibility/enable, an HSV color filter, a
// list of transform functions with an origin, and a layout rectangle.
// [Scene.Resolve] turns them into resolved values:
//
//   - opacity multiplied down from the root
//   - visibility and enable, where visibility always gates enable
//   - HSV filter offsets summed down from the root
//   - world matrices and world bounds
//   - content boxes, the union of a node's bounds and its children's
//
// and keeps a spatial index of world bounds for region and point queries.
//
// # Quick start
//
//	scene := thicket.NewScene()
//	panel := scene.Create()
//	scene.SetLayout(panel, thicket.Layout{Left: 10, Top: 10, Width: 200, Height: 100})
//	scene.AddChild(scene.Root(), panel)
//	scene.SetOpacity(panel, 0.5)
//	scene.Resolve()
//
//	op, _ := scene.ResolvedOpacity(panel)
//	hit, ok := scene.HitTest(50, 50)
//
// The simplest way to see a scene is [Run], which opens a window, calls
// [Scene.Update] every tick and paints the resolved state with [DrawOverlay].
//
// # Incremental resolution
//
// Every resolver owns a [DirtyQueue] of the nodes it must recompute, bucketed
// by tree layer. Setters and structural edits mark exactly the queues whose
// inputs changed. Top-down resolvers drain root-first and recompute whole
// subtrees, so a node is recomputed at most once per frame however many
// times it was marked. The content box resolver drains leaf-first and stops
// climbing as soon as a box comes out unchanged.
//
// A Scene is not safe for concurrent use.
//
// # Style declarations
//
// [Scene.ApplyStyle] accepts inline declarations parsed by the style
// subpackage:
//
//	scene.ApplyStyle(panel, "opacity: 0.5; enable: visible; transform: rotate(45deg)")
//
// Resolution changes can be forwarded to an ECS through an [EntityStore];
// the thicket/ecs module provides one backed by [Donburi].
//
// [Donburi]: https://github.com/yohamta/donburi
package thicket
