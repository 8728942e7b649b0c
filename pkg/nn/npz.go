package nn

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
)

// SaveNPZ writes params to path as an npz archive keyed by parameter name.
// An existing file is overwritten.
func SaveNPZ(path string, params []*Parameter) error {
	w, err := npz.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}

	for _, p := range params {
		if err := w.Write(p.Name, p.Value); err != nil {
			w.Close()
			return errors.Wrapf(err, "write %s to %s", p.Name, path)
		}
	}

	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "close %s", path)
	}
	return nil
}

// LoadNPZ reads every parameter of params from the npz archive at path. Each
// parameter must be present with the same shape.
func LoadNPZ(path string, params []*Parameter) error {
	r, err := npz.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer r.Close()

	keys := make(map[string]string)
	for _, k := range r.Keys() {
		keys[strings.TrimSuffix(k, ".npy")] = k
	}

	for _, p := range params {
		key, ok := keys[p.Name]
		if !ok {
			return errors.Wrapf(ErrMissingParameter, "%s in %s", p.Name, path)
		}

		var m mat.Dense
		if err := r.Read(key, &m); err != nil {
			return errors.Wrapf(err, "read %s from %s", p.Name, path)
		}

		wr, wc := p.Value.Dims()
		gr, gc := m.Dims()
		if wr != gr || wc != gc {
			return errors.Wrapf(ErrShapeMismatch, "%s in %s: stored %dx%d, want %dx%d", p.Name, path, gr, gc, wr, wc)
		}
		p.Value.Copy(&m)
	}
	return nil
}
