// churn builds a wide, deep tree and then mutates it at random every frame:
// reparenting subtrees, destroying and recreating leaves, and writing local
// values. It runs headless and reports per-pass write counts, optionally
// serving prometheus metrics while it runs. A stress test for incremental
// resolution.
package main

import (
	"flag"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/phanxgames/thicket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var logger = commonlog.GetLogger("churn")

type churn struct {
	scene *thicket.Scene
	rng   *rand.Rand
	nodes []thicket.NodeID
}

func main() {
	count := flag.Int("nodes", 10_000, "initial node count")
	frames := flag.Int("frames", 600, "frames to run")
	edits := flag.Int("edits", 200, "random edits per frame")
	metricsAddr := flag.String("metrics", "", "serve prometheus metrics on this address, e.g. :9100")
	snapshot := flag.String("snapshot", "", "write the final frame snapshot to this file")
	verbose := flag.Int("v", 1, "log verbosity")
	flag.Parse()
	commonlog.Configure(*verbose, nil)

	reg := prometheus.NewRegistry()
	scene := thicket.NewScene()
	scene.SetMetrics(thicket.NewMetrics(reg))
	scene.SetLayout(scene.Root(), thicket.Layout{Width: 4000, Height: 4000})

	if *metricsAddr != "" {
		http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				logger.Errorf("metrics server: %v", err)
			}
		}()
	}

	c := &churn{scene: scene, rng: rand.New(rand.NewPCG(1, 2))}
	for range *count {
		c.spawn()
	}
	st := scene.Resolve()
	logger.Infof("built %d nodes in %v", len(c.nodes)+1, st.Duration)

	var total time.Duration
	var worst time.Duration
	for f := 0; f < *frames; f++ {
		for range *edits {
			c.edit()
		}
		st := scene.Resolve()
		total += st.Duration
		worst = max(worst, st.Duration)
		if f%100 == 0 {
			logger.Infof("frame %d: opacity=%d transform=%d content_box=%d spatial=%d in %v",
				st.Frame, st.Opacity, st.Transform, st.ContentBox, st.Spatial, st.Duration)
		}
	}
	if *frames > 0 {
		logger.Infof("%d frames: mean %v, worst %v", *frames, total/time.Duration(*frames), worst)
	}

	if *snapshot != "" {
		snap := scene.Snapshot()
		data, err := thicket.MarshalSnapshot(&snap)
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(*snapshot, data, 0o644); err != nil {
			log.Fatal(err)
		}
		logger.Infof("wrote %d nodes to %s", len(snap.Nodes), *snapshot)
	}
}

// spawn attaches a new node under a random live node.
func (c *churn) spawn() {
	s := c.scene
	parent := s.Root()
	if len(c.nodes) > 0 && c.rng.IntN(4) > 0 {
		parent = c.nodes[c.rng.IntN(len(c.nodes))]
	}
	id := s.Create()
	s.SetLayout(id, thicket.Layout{
		Left:   c.rng.Float64() * 40,
		Top:    c.rng.Float64() * 40,
		Width:  8 + c.rng.Float64()*32,
		Height: 8 + c.rng.Float64()*32,
	})
	if err := s.AddChild(parent, id); err != nil {
		log.Fatal(err)
	}
	c.nodes = append(c.nodes, id)
}

func (c *churn) edit() {
	s := c.scene
	i := c.rng.IntN(len(c.nodes))
	id := c.nodes[i]
	switch c.rng.IntN(6) {
	case 0:
		s.SetOpacity(id, c.rng.Float64())
	case 1:
		s.SetTransform(id, thicket.Transform{Ops: []thicket.TransformOp{thicket.Rotate(c.rng.Float64())}})
	case 2:
		s.SetVisible(id, c.rng.IntN(8) > 0)
	case 3:
		l := s.Layout(id)
		l.Left += c.rng.Float64()*4 - 2
		s.SetLayout(id, l)
	case 4:
		// Moving under a descendant is rejected; that is fine.
		target := c.nodes[c.rng.IntN(len(c.nodes))]
		_ = s.InsertChild(target, id, thicket.Front())
	case 5:
		if rec, _ := s.Tree().Get(id); rec.ChildCount > 0 {
			return
		}
		s.Destroy(id)
		c.nodes[i] = c.nodes[len(c.nodes)-1]
		c.nodes = c.nodes[:len(c.nodes)-1]
		c.spawn()
	}
}
