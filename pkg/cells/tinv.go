package cells

import (
	"fmt"

	"github.com/matzehuels/cellforge/pkg/database"
	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/geom"
	"github.com/matzehuels/cellforge/pkg/template"
)

// TInv builds a tri-state inverter named tinv_<nf>x with pins I, EN, ENB,
// O, VSS, and VDD. nf must be even.
//
// MN0 and MP0 take the input; MN1 and MP1 are the enable switches between
// them and the output. EN drives MN1's gate from a column right of the
// cell's gate contacts; ENB reaches MP1's gate on its last gate column.
func TInv(lib *database.Library, nf int, opts Options) (*database.Design, error) {
	return generate(lib, "tinv", nf, opts)
}

// TInvHS builds the high-speed tri-state inverter tinv_hs_<nf>x. Instead of
// one output column it brings every drain pair out separately as pins O0,
// O1, ..., all on the shared net "O:" so a parent design can strap them.
func TInvHS(lib *database.Library, nf int, opts Options) (*database.Design, error) {
	return generate(lib, "tinv_hs", nf, opts)
}

func (k *kit) tinvQuad(nf int) (*quad, error) {
	var (
		q   quad
		err error
	)
	tied := template.Params{"nf": nf, "tie": "S"}
	swapped := template.Params{"nf": nf, "trackswap": true}
	if q.in0, err = k.mos(k.nmos, "MN0", geom.R0, tied, template.NetMap{"G": "I", "D": "IntN", "RAIL": "VSS"}); err != nil {
		return nil, err
	}
	if q.ip0, err = k.mos(k.pmos, "MP0", geom.MX, tied, template.NetMap{"G": "I", "D": "IntP", "RAIL": "VDD"}); err != nil {
		return nil, err
	}
	if q.in1, err = k.mos(k.nmos, "MN1", geom.R0, swapped, template.NetMap{"G": "EN", "S": "IntN", "D": "O", "RAIL": "VSS"}); err != nil {
		return nil, err
	}
	if q.ip1, err = k.mos(k.pmos, "MP1", geom.MX, swapped, template.NetMap{"G": "ENB", "S": "IntP", "D": "O", "RAIL": "VDD"}); err != nil {
		return nil, err
	}
	return &q, nil
}

func (k *kit) tinvRoute(d *database.Design, q *quad, nf int, hs bool) error {
	e := &ends{g: k.r23}
	in := []geom.Point{e.lo(q.in0, "G"), e.lo(q.ip0, "G")}
	nGate, pGate := e.hi(q.in1, "G"), e.hi(q.ip1, "G")
	nDrain, pDrain := e.lo(q.in1, "D"), e.lo(q.ip1, "D")
	nDrainHi, pDrainHi := e.hi(q.in1, "D"), e.hi(q.ip1, "D")
	intP := []geom.Point{e.lo(q.ip0, "D"), e.lo(q.ip1, "S")}
	intN := []geom.Point{e.lo(q.in0, "D"), e.lo(q.in1, "S")}
	if e.err != nil {
		return e.err
	}

	inWire, err := d.Route(k.r23, in, database.WithVias(true, true), database.WithNet("I"))
	if err != nil {
		return err
	}

	var outWires [][]*database.Element
	if hs {
		// One output column per drain pair, two fingers apart.
		step, err := k.fingerStep(q.in1, nf)
		if err != nil {
			return err
		}
		for i := range nf / 2 {
			shift := geom.Pt(i*step, 0)
			w, err := d.Route(k.r23, []geom.Point{nDrain.Add(shift), pDrain.Add(shift)},
				database.WithVias(true, true), database.WithNet("O:"))
			if err != nil {
				return fmt.Errorf("output %d: %w", i, err)
			}
			outWires = append(outWires, w)
		}
	} else {
		w, err := d.Route(k.r23, []geom.Point{nDrainHi, pDrainHi}, database.WithVias(true, true), database.WithNet("O"))
		if err != nil {
			return err
		}
		outWires = append(outWires, w)
	}

	right := geom.Pt(1, 0)
	enWire, err := d.Route(k.r23, []geom.Point{nGate.Add(right), pGate.Add(right)}, database.WithVias(true, false), database.WithNet("EN"))
	if err != nil {
		return err
	}
	if _, err := d.Route(k.r23, []geom.Point{nGate, nGate.Add(right)}, database.WithNet("EN")); err != nil {
		return err
	}
	enbWire, err := d.Route(k.r23, []geom.Point{nGate, pGate}, database.WithVias(false, true), database.WithNet("ENB"))
	if err != nil {
		return err
	}

	if _, err := d.Route(k.r23, intP, database.WithNet("IntP")); err != nil {
		return err
	}
	if _, err := d.Route(k.r23, intN, database.WithNet("IntN")); err != nil {
		return err
	}

	if err := pin(d, k.r23, "I", "", inWire); err != nil {
		return err
	}
	if err := pin(d, k.r23, "EN", "", enWire); err != nil {
		return err
	}
	if err := pin(d, k.r23, "ENB", "", enbWire); err != nil {
		return err
	}
	if hs {
		for i, w := range outWires {
			if err := pin(d, k.r23, fmt.Sprintf("O%d", i), "O:", w); err != nil {
				return err
			}
		}
	} else if err := pin(d, k.r23, "O", "", outWires[0]); err != nil {
		return err
	}
	return k.rails(d, q)
}

// fingerStep returns the routing-grid columns between two drain contacts of
// inst, which are two finger pitches apart.
func (k *kit) fingerStep(inst *template.Instance, nf int) (int, error) {
	pitch := inst.Size().X / nf
	if k.r23.X.Range%len(k.r23.X.Elements) != 0 {
		return 0, errors.New(errors.ErrCodeUnalignedEndpoint, "routing grid %s has irregular columns", k.r23.Name)
	}
	col := k.r23.X.Range / len(k.r23.X.Elements)
	if (2*pitch)%col != 0 {
		return 0, errors.New(errors.ErrCodeUnalignedEndpoint, "finger pitch %d is not a multiple of the %s column spacing %d", pitch, k.r23.Name, col)
	}
	return 2 * pitch / col, nil
}
