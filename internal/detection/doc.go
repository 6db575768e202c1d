// Package detection finds noteheads and barlines on a rendered page of
// printed music.
//
// The pipeline runs once per page and is a chain of pixel heuristics, each
// stage cleaning up after the previous one:
//
//  1. Binarize: average RGB below a cutoff is ink.
//  2. Staff detection on horizontal ink projections; staves are grouped
//     into systems (single staves or treble+bass pairs). No staves means one
//     fallback system covering the page.
//  3. Noise cleanup, staff-line removal, then per system a vertical stroke
//     mask (stems, ties, slurs), a protect mask (notehead cores) and a
//     directional mask. Strokes are erased except where protected, followed
//     by an over-erasure-guarded horizontal run eraser.
//  4. Barlines are scored from column runs of the cleaned page.
//  5. A BlobFinder returns candidate boxes from the erased page. Oversized
//     boxes are split, every piece is snapped to the staff-step grid, shape
//     scored and run through the rejection rules.
//  6. Cluster suppression, per-slot consolidation and radius dedupe leave
//     one candidate per notehead, which is classified into a pitch class.
//
// # Units
//
// Thresholds in Params are expressed in staff spacings (S), the distance
// between adjacent staff lines, so one parameter set serves any rendering
// scale.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Staff steps are the exception: they count half spacings upward from the
// bottom line of a staff.
package detection
