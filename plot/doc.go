// Package plot draws equilibria and grids in the (R, Z) plane, either as
// styled text for a terminal or as an SVG document.
//
// What:
//
//   - Canvas rasterises polylines and markers onto character cells with
//     equal aspect and renders them with one lipgloss style per Layer.
//   - SVG collects the same drawing calls as polylines in an XML document.
//   - Contours runs marching squares over a sampled function and joins the
//     segments into polylines, one set per level.
//   - Equilibrium draws flux surfaces, the wall, the magnetic axis, X-points
//     and optionally the separatrix regions; GridCells draws the cell edges
//     stored in a grid file.
//
// Errors:
//
//   - ErrBox: a box with no area.
//   - ErrSize: a raster or sampling size below the minimum.
//   - ErrShape: corner arrays of a grid file disagree in shape.
package plot
