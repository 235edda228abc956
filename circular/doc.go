// Package circular provides an analytic equilibrium of concentric circular
// flux surfaces centred on (R0, 0), with psi = B0 r^2 / (2q) and a constant
// poloidal current function fpol = B0 R0.
//
// The grid is a single periodic core region between r_inner and r_outer,
// built on the circle at r_outer. A circular wall of radius r_wall (1.2 times
// r_outer when unset) bounds the domain.
package circular
