package tech

import (
	_ "embed"
)

//go:embed demo.toml
var demoTOML []byte

// DemoName is the name of the built-in demonstration technology.
const DemoName = "demo"

// Demo loads the built-in demonstration technology. It has placement grid
// placement_basic, routing grids routing_12_cmos and routing_23_cmos, MOS
// templates nmos and pmos, and a fixed tap cell.
func Demo() (*Tech, error) {
	f, err := ParseFile(demoTOML)
	if err != nil {
		return nil, err
	}
	return Load(&FileProvider{Path: "demo.toml", file: f})
}

// DemoSource returns the TOML source of the demonstration technology, as a
// starting point for custom technology files.
func DemoSource() []byte {
	return append([]byte(nil), demoTOML...)
}
