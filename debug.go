package thicket

import (
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("thicket")

// debugLog logs per-frame pass stats at debug level.
func (s *Scene) debugLog(st FrameStats) {
	log.Debug("frame resolved",
		"frame", st.Frame,
		"opacity", st.Opacity,
		"show", st.Show,
		"filter", st.Filter,
		"transform", st.Transform,
		"content_box", st.ContentBox,
		"spatial", st.Spatial,
		"duration", st.Duration,
		"nodes", s.tree.Len(),
		"index", s.spatial.index.Len(),
	)
}

// debugCheckNode warns when a newly attached node is deeper or has more
// children than the configured thresholds.
func (s *Scene) debugCheckNode(id NodeID) {
	r := s.tree.rec(id)
	if limit := s.cfg.MaxTreeDepth; limit > 0 && r.Layer > limit {
		log.Warningf("tree depth %d exceeds %d (node %v)", r.Layer, limit, id)
	}
	if limit := s.cfg.MaxChildren; limit > 0 && r.ChildCount > limit {
		log.Warningf("node %v has %d children (threshold %d)", id, r.ChildCount, limit)
	}
}
