// Package sofia adapts SoFiA-2 ASCII catalogues to detection records.
//
// It reads the raw catalogue (comment header, quoted names, whitespace
// columns) and converts pixel and channel quantities to sky units using
// the cube's WCS header. It does not run SoFiA; see package pipeline.
package sofia
