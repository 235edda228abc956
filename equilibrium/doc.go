// Package equilibrium represents a magnetic equilibrium and the flux-surface
// geometry built on it.
//
// Overview:
//
//   - Field is the capability every equilibrium source provides: the flux
//     function psi(R,Z) and its first and second derivatives. GridField wraps
//     an interp.Bicubic sampled on a regular (R,Z) grid.
//   - Equilibrium couples a Field with the poloidal current function, the
//     critical points (magnetic axis, X-points), the bounding box, an optional
//     wall polygon and the ordered set of Regions that make up a grid.
//   - Contour is an ordered list of points on one flux surface with cached
//     poloidal distances backed by a FineContour. Contours can be refined back
//     onto their surface, extended past their ends and regridded onto a
//     prescribed poloidal spacing.
//   - Region is a Contour (normally a piece of separatrix) that also carries
//     radial segments, psi values, connections and poloidal spacing controls.
//   - Trace follows a flux surface from a starting point until it reaches the
//     wall, returns to an X-point or closes on itself.
//   - BuildCoreOnly, BuildSingleNull and BuildFourLeg assemble Regions and
//     their connections for the supported topologies.
//
// Conventions:
//
//   - Radial (x) indices increase outward from the innermost psi value.
//   - Poloidal (y) indices follow each Region's contour; the region "inside"
//     the separatrix (core or private flux) lies to the right of +y.
//   - Regions hold 2*n+1 points for n cells: faces at even indices, centres
//     at odd indices.
//
// Complexity:
//
//   - Refining a point costs O(k) field evaluations (k Brent iterations).
//   - A FineContour of N points costs O(N*k*iterations) to equalise.
//   - Regridding a contour onto m points costs O(m*k) plus FineContour work.
//
// Errors:
//
//   - ErrSolution: a numerical solve failed (refinement, root bracketing,
//     perpendicular following, extremum search).
//   - ErrNoSaddle: edge extrema of the saddle-point search box are inconsistent.
//   - ErrConnection: a region edge was linked twice or across differing nx.
//   - ErrUnknownRegion / ErrDuplicateRegion: region lookup or insertion failed.
//   - ErrInvalidKind: a region kind is not "<wall|X>.<wall|X>".
//   - ErrSpacingNotMonotonic: a poloidal spacing function decreases.
//   - ErrLeftDomain / ErrTraceSteps: contour tracing left the box or ran out
//     of steps.
//   - ErrTooFewPoints: a contour is too short for the requested operation.
//   - ErrTopology: the critical points do not support the requested topology.
package equilibrium
