// Package feature projects flow summaries into the fixed-order
// numeric vector the classifiers were trained on.
package feature

// Names lists the selected features in canonical training order. The
// classifier artifacts are fitted against exactly this schema; order
// and length must never change without retraining.
var Names = []string{
	"Destination Port",
	"Fwd Packet Length Max",
	"Fwd Packet Length Mean",
	"Bwd Packet Length Max",
	"Bwd Packet Length Min",
	"Bwd Packet Length Mean",
	"Bwd Packet Length Std",
	"Fwd IAT Std",
	"Bwd IAT Total",
	"Bwd IAT Max",
	"Min Packet Length",
	"Max Packet Length",
	"Packet Length Mean",
	"Packet Length Std",
	"Packet Length Variance",
	"PSH Flag Count",
	"URG Flag Count",
	"Average Packet Size",
	"Avg Fwd Segment Size",
	"Avg Bwd Segment Size",
}

// NumFeatures is the dimension of every feature vector.
var NumFeatures = len(Names)
