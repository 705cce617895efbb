package feature

import (
	"github.com/Tayebwa-ian/DDoS-Detection/internal/model"
)

// Mapper turns a flow summary into the feature vector of the training
// schema. Projecting from the complete summary struct makes silent
// per-field defaulting impossible; the vector always has NumFeatures
// entries in schema order.
type Mapper struct {
	// undirectedCompat zeroes the directional features, reproducing the
	// legacy undirected aggregation for models trained against it.
	undirectedCompat bool
}

// NewMapper creates a mapper. Pass undirectedCompat=true only when the
// loaded models were trained on undirected flow statistics.
func NewMapper(undirectedCompat bool) *Mapper {
	return &Mapper{undirectedCompat: undirectedCompat}
}

// Map is a pure projection of (key, summary) into the fixed vector.
func (m *Mapper) Map(key model.FlowKey, s model.FlowSummary) model.FeatureVector {
	fwdMax, fwdMean := s.FwdPktMax, s.FwdPktMean
	bwdMax, bwdMin, bwdMean, bwdStd := s.BwdPktMax, s.BwdPktMin, s.BwdPktMean, s.BwdPktStd
	fwdIATStd := s.FwdIATStd
	bwdIATTotal, bwdIATMax := s.BwdIATTotal, s.BwdIATMax
	if m.undirectedCompat {
		fwdMax, fwdMean = 0, 0
		bwdMax, bwdMin, bwdMean, bwdStd = 0, 0, 0, 0
		fwdIATStd = 0
		bwdIATTotal, bwdIATMax = 0, 0
	}

	return model.FeatureVector{
		float64(s.ReplyPort), // Destination Port (origin's destination)
		fwdMax,               // Fwd Packet Length Max
		fwdMean,              // Fwd Packet Length Mean
		bwdMax,               // Bwd Packet Length Max
		bwdMin,               // Bwd Packet Length Min
		bwdMean,              // Bwd Packet Length Mean
		bwdStd,               // Bwd Packet Length Std
		fwdIATStd,            // Fwd IAT Std
		bwdIATTotal,          // Bwd IAT Total
		bwdIATMax,            // Bwd IAT Max
		s.PktMin,             // Min Packet Length
		s.PktMax,             // Max Packet Length
		s.PktMean,            // Packet Length Mean
		s.PktStd,             // Packet Length Std
		s.PktVar,             // Packet Length Variance
		float64(s.PSHCount),  // PSH Flag Count
		float64(s.URGCount),  // URG Flag Count
		s.AvgPktSize,         // Average Packet Size
		fwdMean,              // Avg Fwd Segment Size
		bwdMean,              // Avg Bwd Segment Size
	}
}
