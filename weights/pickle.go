package weights

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ace-step/aceinfer/aceerrors"
	"github.com/ace-step/aceinfer/ml"
	"github.com/d4l3k/go-bfloat16"
	"github.com/nlpodyssey/gopickle/pytorch"
	"github.com/x448/float16"
)

// Load reads a checkpoint file into a flat, normalized Tree (spec.md
// §4.9 steps 1–3). It dispatches on file extension: a pickled PyTorch
// state dict (.pt/.bin/.ckpt) is read with gopickle, matching the format
// the reference ACE-Step checkpoints actually ship in. A `.safetensors`
// path is recognized but not read: it returns a WeightFormat error, as
// does any other extension.
func Load(path string) (Tree, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pt", ".bin", ".ckpt":
		return loadPickle(path)
	case ".safetensors":
		return loadSafetensors(path)
	default:
		return nil, aceerrors.New(aceerrors.WeightFormat, "unrecognized checkpoint extension %q", ext)
	}
}

func loadPickle(path string) (Tree, error) {
	raw, err := pytorch.Load(path)
	if err != nil {
		return nil, aceerrors.Wrap(aceerrors.WeightFormat, err, "reading pickled checkpoint %s", path)
	}

	dict, ok := raw.(*pytorch.OrderedDict)
	if !ok {
		return nil, aceerrors.New(aceerrors.WeightFormat, "checkpoint %s did not unpickle to a state dict", path)
	}

	flat := make(map[string]*ml.Array, dict.Len())
	for _, key := range dict.Keys() {
		v, _ := dict.Get(key)
		t, ok := v.(*pytorch.Tensor)
		if !ok {
			continue
		}
		arr, err := tensorToArray(t)
		if err != nil {
			return nil, aceerrors.Wrap(aceerrors.WeightFormat, err, "converting tensor %q", key)
		}
		flat[fmt.Sprint(key)] = arr
	}
	return normalizeKeys(flat), nil
}

// tensorToArray converts a pytorch.Tensor's raw storage to an *ml.Array,
// decoding float16/bfloat16 storages with the same two packages the
// teacher uses to decode its own MLX device buffers back to []float32.
func tensorToArray(t *pytorch.Tensor) (*ml.Array, error) {
	shape := make([]int, len(t.Size))
	for i, s := range t.Size {
		shape[i] = int(s)
	}

	data, err := storageToFloat32(t)
	if err != nil {
		return nil, err
	}
	return ml.NewFromFloats(data, shape...), nil
}

func storageToFloat32(t *pytorch.Tensor) ([]float32, error) {
	switch storage := t.Source.(type) {
	case *pytorch.FloatStorage:
		return storage.Data, nil
	case *pytorch.HalfStorage:
		out := make([]float32, len(storage.Data))
		for i, raw := range storage.Data {
			out[i] = float16.Frombits(uint16(raw)).Float32()
		}
		return out, nil
	case *pytorch.BFloat16Storage:
		return bfloat16.DecodeFloat32(storage.Data), nil
	default:
		return nil, fmt.Errorf("unsupported pytorch storage type %T", storage)
	}
}

// normalizeKeys applies the three pure key-normalization functions in the
// fixed order spec.md §9 calls for: wrapper-sequential flattening,
// identifier-style conversion, then the fixed tensor-name replacements.
// Physical layout conversion (step 4) happens lazily in Populate, once a
// tensor's role is known from the struct field it is being assigned to.
func normalizeKeys(flat map[string]*ml.Array) Tree {
	wrapperIndex := map[string]int{"proj_in": 1, "proj_out": 1}
	out := make(Tree, len(flat))
	for k, v := range flat {
		key := FlattenWrapperSequential(k, wrapperIndex)
		key = ToIdentifierStyle(key)
		key = ApplyReplacements(key)
		out[key] = v
	}
	return out
}

// loadSafetensors is the `.safetensors` branch of Load. It does not parse
// the file: it always returns a WeightFormat error naming the path.
func loadSafetensors(path string) (Tree, error) {
	return nil, aceerrors.New(aceerrors.WeightFormat, "safetensors checkpoints are not yet supported: %s", path)
}
