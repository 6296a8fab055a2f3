package cells

import (
	"github.com/matzehuels/cellforge/pkg/database"
	"github.com/matzehuels/cellforge/pkg/geom"
	"github.com/matzehuels/cellforge/pkg/template"
)

// NAND builds a two-input NAND gate named nand_<nf>x with pins A, B, OUT,
// VSS, and VDD. nf must be even.
//
// MN0 and MN1 form the pull-down stack through the Internal net, MP0 and
// MP1 the parallel pull-up. Input B drives the left pair and A the right.
// With two fingers A runs on a track one column left of MN1's gate; wider
// cells route it straight up the gate column.
func NAND(lib *database.Library, nf int, opts Options) (*database.Design, error) {
	return generate(lib, "nand", nf, opts)
}

func (k *kit) nandQuad(nf int) (*quad, error) {
	var (
		q   quad
		err error
	)
	tied := template.Params{"nf": nf, "tie": "S"}
	if q.in0, err = k.mos(k.nmos, "MN0", geom.R0, tied, template.NetMap{"G": "B", "D": "Internal", "RAIL": "VSS"}); err != nil {
		return nil, err
	}
	if q.ip0, err = k.mos(k.pmos, "MP0", geom.MX, tied, template.NetMap{"G": "B", "D": "OUT", "RAIL": "VDD"}); err != nil {
		return nil, err
	}
	if q.in1, err = k.mos(k.nmos, "MN1", geom.R0, template.Params{"nf": nf, "trackswap": true},
		template.NetMap{"G": "A", "D": "OUT", "S": "Internal", "RAIL": "VSS"}); err != nil {
		return nil, err
	}
	if q.ip1, err = k.mos(k.pmos, "MP1", geom.MX, tied, template.NetMap{"G": "A", "D": "OUT", "RAIL": "VDD"}); err != nil {
		return nil, err
	}
	return &q, nil
}

func (k *kit) nandRoute(d *database.Design, q *quad, nf int) error {
	e23 := &ends{g: k.r23}
	e12 := &ends{g: k.r12}
	aMN := []geom.Point{e23.lo(q.in1, "G"), e23.lo(q.ip1, "G")}
	bMN := []geom.Point{e23.lo(q.in0, "G"), e23.lo(q.ip0, "G")}
	internal := []geom.Point{e12.hi(q.in0, "D"), e12.lo(q.in1, "S")}
	outTop := []geom.Point{e12.hi(q.ip0, "D"), e12.lo(q.ip1, "D")}
	outRise := []geom.Point{e23.hi(q.in1, "D"), e23.hi(q.ip1, "D")}
	if e23.err != nil {
		return e23.err
	}
	if e12.err != nil {
		return e12.err
	}

	// A
	var aWire []*database.Element
	if nf == 2 {
		tr, err := d.RouteViaTrack(k.r23, aMN, database.AtColumn(aMN[0].X-1), database.WithNet("A"))
		if err != nil {
			return err
		}
		aWire = []*database.Element{tr.Track}
	} else {
		elems, err := d.Route(k.r23, aMN, database.WithVias(true, true), database.WithNet("A"))
		if err != nil {
			return err
		}
		aWire = elems
	}

	bWire, err := d.Route(k.r23, bMN, database.WithVias(true, true), database.WithNet("B"))
	if err != nil {
		return err
	}
	if _, err := d.Route(k.r12, internal, database.WithNet("Internal")); err != nil {
		return err
	}
	if _, err := d.Route(k.r12, outTop, database.WithNet("OUT")); err != nil {
		return err
	}
	outWire, err := d.Route(k.r23, outRise, database.WithVias(true, true), database.WithNet("OUT"))
	if err != nil {
		return err
	}

	for _, p := range []struct {
		name  string
		elems []*database.Element
	}{{"A", aWire}, {"B", bWire}, {"OUT", outWire}} {
		if err := pin(d, k.r23, p.name, "", p.elems); err != nil {
			return err
		}
	}
	return k.rails(d, q)
}
