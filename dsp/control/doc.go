// Package control splits host audio blocks of arbitrary length into
// sub-blocks aligned to a fixed control period, so smoothed parameters
// advance exactly once per period no matter how the host chops the stream.
//
// While no parameter is interpolating a block is rendered in one piece. While
// interpolation is active a block is rendered as
//
//	[leftover of the previous period] [full periods...] [partial period]
//
// with one parameter advance before every full or partial period. The
// remainder of an unfinished period is carried into the next call.
package control
