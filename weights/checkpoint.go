package weights

import (
	"github.com/ace-step/aceinfer/aceerrors"
	"github.com/ace-step/aceinfer/dit"
	"github.com/ace-step/aceinfer/ml"
	"github.com/ace-step/aceinfer/vae"
)

// Checkpoint is the in-memory result of loading a DiT checkpoint: its
// populated decoder plus the two optional top-level lookups spec.md §4.9
// and §3's Checkpoint entity name.
type Checkpoint struct {
	Decoder                *dit.Decoder
	NullConditionEmbedding *ml.Array // nil if the checkpoint carries none
	SilenceLatent          *ml.Array // nil if the checkpoint carries none
}

// LoadDiT reads a DiT checkpoint file, populates a *dit.Decoder from it,
// and recovers the optional null-condition-embedding and silence-latent
// tensors some checkpoints bundle alongside the model weights.
func LoadDiT(path string, cfg dit.Config) (*Checkpoint, error) {
	tree, err := Load(path)
	if err != nil {
		return nil, err
	}

	decoder := &dit.Decoder{}
	if err := Populate(tree, decoder); err != nil {
		return nil, aceerrors.Wrap(aceerrors.WeightFormat, err, "populating dit decoder from %s", path)
	}
	decoder.Init(cfg)

	ckpt := &Checkpoint{Decoder: decoder}
	if emb, ok := tree.Find("null_condition_emb"); ok {
		ckpt.NullConditionEmbedding = emb
	}
	if sil, ok := tree.Find("silence_latent"); ok {
		ckpt.SilenceLatent = sil
	}
	return ckpt, nil
}

// LoadVAE reads a checkpoint file, optionally scoped to a "decoder."
// prefix (the variant entry point spec.md §4.9 calls for when the VAE
// decoder ships as a sub-tree of a larger autoencoder checkpoint), and
// populates a *vae.Decoder from it.
func LoadVAE(path string, cfg vae.Config) (*vae.Decoder, error) {
	tree, err := Load(path)
	if err != nil {
		return nil, err
	}
	tree = tree.SubTree("decoder")

	decoder := &vae.Decoder{}
	if err := Populate(tree, decoder); err != nil {
		return nil, aceerrors.Wrap(aceerrors.WeightFormat, err, "populating vae decoder from %s", path)
	}
	decoder.Init(cfg)
	return decoder, nil
}
