// Package classify is the boundary to the inference collaborator: it
// loads the pretrained artifacts at startup and answers synchronous,
// side-effect-free predict calls for the pipeline.
package classify

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/config"
	"github.com/Tayebwa-ian/DDoS-Detection/internal/model"
)

// Model is one loaded classifier.
type Model interface {
	ID() string
	PredictProba(x []float64) (float64, error)
}

// Gateway fans a feature vector out across every loaded model. The
// final malicious decision belongs to the mitigation controller; the
// gateway only reports per-model probabilities and labels.
type Gateway struct {
	scaler *MinMaxScaler
	models []Model
}

// LoadGateway loads the scaler (optional) and every configured model
// artifact from the model directory. A missing required artifact is an
// error; callers treat it as fatal before the capture loop begins.
func LoadGateway(cfg config.ModelsConfig) (*Gateway, error) {
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("no models configured in %s", cfg.Dir)
	}

	g := &Gateway{}

	if cfg.Scaler != "" {
		scaler, err := LoadScaler(filepath.Join(cfg.Dir, cfg.Scaler))
		if err != nil {
			return nil, err
		}
		g.scaler = scaler
	} else {
		// Without a fitted scaler the raw features are assumed to be
		// already compatible with the models.
		log.Println("No scaler artifact configured; using raw feature values.")
	}

	for _, def := range cfg.Models {
		path := filepath.Join(cfg.Dir, def.File)
		var (
			m   Model
			err error
		)
		switch def.Type {
		case "logistic":
			m, err = LoadLogistic(def.ID, path)
		case "tree":
			m, err = LoadTree(def.ID, path)
		default:
			err = fmt.Errorf("unknown model type %q for %s", def.Type, def.ID)
		}
		if err != nil {
			return nil, err
		}
		g.models = append(g.models, m)
		log.Printf("Loaded model '%s' (%s) from %s", def.ID, def.Type, path)
	}

	return g, nil
}

// NewGateway wires pre-built models, used by tests and custom callers.
func NewGateway(scaler *MinMaxScaler, models ...Model) *Gateway {
	return &Gateway{scaler: scaler, models: models}
}

// Predict scales the vector once and collects every model's verdict in
// configuration order. label = probability >= threshold.
func (g *Gateway) Predict(fv model.FeatureVector, threshold float64) ([]model.ClassificationResult, error) {
	x := []float64(fv)
	if g.scaler != nil {
		scaled, err := g.scaler.Transform(x)
		if err != nil {
			return nil, err
		}
		x = scaled
	}

	results := make([]model.ClassificationResult, 0, len(g.models))
	for _, m := range g.models {
		p, err := m.PredictProba(x)
		if err != nil {
			return nil, err
		}
		label := 0
		if p >= threshold {
			label = 1
		}
		results = append(results, model.ClassificationResult{
			ModelID:     m.ID(),
			Probability: p,
			Label:       label,
		})
	}
	return results, nil
}
