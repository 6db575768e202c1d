package detection

// Params holds every tunable threshold of the pipeline.
//
// Lengths are expressed in units of staff spacing (S) unless the field name
// says otherwise, so a single Params value works across rendering scales.
// The defaults were tuned on engraved piano and choral scores rendered at
// 2-3x screen resolution.
type Params struct {
	// Binary ink map.
	InkCutoff uint8 `mapstructure:"ink_cutoff"` // average RGB below this is ink

	// Staff detector.
	StaffTargetWidth   int     `mapstructure:"staff_target_width"`   // downsample width in px
	StaffThresholds    []int   `mapstructure:"staff_thresholds"`     // luminance cutoffs tried
	StaffRowMinFrac    float64 `mapstructure:"staff_row_min_frac"`   // row ink / width needed for a peak
	StaffPeakMinSep    int     `mapstructure:"staff_peak_min_sep"`   // px, non-maximum suppression
	StaffGapTolerance  float64 `mapstructure:"staff_gap_tolerance"`  // fraction of median gap
	StaffMinGap        float64 `mapstructure:"staff_min_gap"`        // px, smallest plausible spacing
	MinSpacing         float64 `mapstructure:"min_spacing"`          // px floor for any spacing
	FallbackSpacingDiv float64 `mapstructure:"fallback_spacing_div"` // page height / this when no staff

	// System builder.
	GrandStaffLookahead int     `mapstructure:"grand_staff_lookahead"`
	GrandStaffGapTarget float64 `mapstructure:"grand_staff_gap_target"` // S
	GrandStaffGapMin    float64 `mapstructure:"grand_staff_gap_min"`    // S
	GrandStaffGapMax    float64 `mapstructure:"grand_staff_gap_max"`    // S
	SystemPad           float64 `mapstructure:"system_pad"`             // S above/below the lines

	// Noise cleaner.
	NoiseAreaFrac float64 `mapstructure:"noise_area_frac"` // of S²

	// Vertical stroke mask.
	StrokeGap          int     `mapstructure:"stroke_gap"`            // px bridged inside a run
	StrokeMinLen       float64 `mapstructure:"stroke_min_len"`        // S
	StrokeMaxWidth     float64 `mapstructure:"stroke_max_width"`      // S
	StrokeCompMinLong  float64 `mapstructure:"stroke_comp_min_long"`  // S
	StrokeCompMaxShort float64 `mapstructure:"stroke_comp_max_short"` // S
	StrokeDilate       int     `mapstructure:"stroke_dilate"`         // px
	StaffBandHalf      float64 `mapstructure:"staff_band_half"`       // S, half height of a staff-line band

	// Protect mask.
	ProtectCoreMin float64 `mapstructure:"protect_core_min"` // S, min run both ways for a head core
	ProtectCoreMax float64 `mapstructure:"protect_core_max"` // S, longer horizontal runs are beams
	ProtectDilate  float64 `mapstructure:"protect_dilate"`   // S

	// Hollow-head mask: enclosed paper the size of a half or whole note hole.
	HoleMinWidth  float64 `mapstructure:"hole_min_width"`  // S
	HoleMaxHeight float64 `mapstructure:"hole_max_height"` // S
	HoleMinAspect float64 `mapstructure:"hole_min_aspect"` // width / height
	HoleMaxFill   float64 `mapstructure:"hole_max_fill"`   // of the hole's box; rectangles are not holes
	HoleRingPad   float64 `mapstructure:"hole_ring_pad"`   // S around the hole

	// Directional mask.
	DirMinLen   [4]float64 `mapstructure:"dir_min_len"`   // S: horizontal, vertical, diag, anti-diag
	DirMaxWidth [4]float64 `mapstructure:"dir_max_width"` // S

	// Horizontal run eraser.
	HRunMinLen   float64 `mapstructure:"hrun_min_len"`   // S
	HRunMaxThick float64 `mapstructure:"hrun_max_thick"` // S
	HRunMaxErase float64 `mapstructure:"hrun_max_erase"` // fraction of region ink

	// Barline detector.
	BarlineSymbolZoneFrac float64 `mapstructure:"barline_symbol_zone_frac"` // of system width
	BarlineSymbolZoneMax  float64 `mapstructure:"barline_symbol_zone_max"`  // S
	BarlineBandPad        float64 `mapstructure:"barline_band_pad"`         // S
	BarlineMinRunFrac     float64 `mapstructure:"barline_min_run_frac"`
	BarlineMinInkFrac     float64 `mapstructure:"barline_min_ink_frac"`
	BarlineThickness      float64 `mapstructure:"barline_thickness"` // S, expected stroke
	BarlinePublishScore   float64 `mapstructure:"barline_publish_score"`
	BarlineVetoScore      float64 `mapstructure:"barline_veto_score"` // internal neighborhood veto
	BarlineMergeGap       int     `mapstructure:"barline_merge_gap"`  // px

	// Candidate intake and splitting.
	HeadWidth          float64 `mapstructure:"head_width"`        // S
	HeadHeight         float64 `mapstructure:"head_height"`       // S
	CandidateMinDim    float64 `mapstructure:"candidate_min_dim"` // S
	CandidateMaxDim    float64 `mapstructure:"candidate_max_dim"` // S
	CandidateMaxAspect float64 `mapstructure:"candidate_max_aspect"`
	SplitTrigger       float64 `mapstructure:"split_trigger"`     // multiple of head size
	SplitBeamRow       float64 `mapstructure:"split_beam_row"`    // row ink / row max excluded
	SplitMinSupport    float64 `mapstructure:"split_min_support"` // S
	SplitForceAspect   float64 `mapstructure:"split_force_aspect"`
	SplitNMSIoU        float64 `mapstructure:"split_nms_iou"`

	// Staff-step gate.
	MaxStepIndex      int     `mapstructure:"max_step_index"`
	StepSoftTol       float64 `mapstructure:"step_soft_tol"`
	StepHardTol       float64 `mapstructure:"step_hard_tol"`
	GapBassBias       float64 `mapstructure:"gap_bass_bias"` // steps
	FallbackGateScore float64 `mapstructure:"fallback_gate_score"`

	// Shape scorer.
	FillTarget        float64 `mapstructure:"fill_target"`
	FillSlack         float64 `mapstructure:"fill_slack"`
	ColumnStemShare   float64 `mapstructure:"column_stem_share"`
	ColumnStemPenalty float64 `mapstructure:"column_stem_penalty"`
	EccentricityHigh  float64 `mapstructure:"eccentricity_high"`
	ThinStroke        float64 `mapstructure:"thin_stroke"` // S
	ThinPenalty       float64 `mapstructure:"thin_penalty"`
	GateWeight        float64 `mapstructure:"gate_weight"`
	ShapeWeight       float64 `mapstructure:"shape_weight"`

	// Rejection engine.
	StrongShape   float64 `mapstructure:"strong_shape"`
	StrongOverlap float64 `mapstructure:"strong_overlap"`
	MinInkExtent  float64 `mapstructure:"min_ink_extent"`

	// Consolidation.
	ClusterAreaFrac     float64 `mapstructure:"cluster_area_frac"` // of S²
	ClusterRadius       float64 `mapstructure:"cluster_radius"`    // S
	ClusterMinNeighbors int     `mapstructure:"cluster_min_neighbors"`
	SlotBin             float64 `mapstructure:"slot_bin"`      // S
	DedupeRadius        float64 `mapstructure:"dedupe_radius"` // S
}

// DefaultParams returns the tuned default thresholds.
func DefaultParams() Params {
	return Params{
		InkCutoff: 160,

		StaffTargetWidth:   1200,
		StaffThresholds:    []int{110, 140, 170, 200},
		StaffRowMinFrac:    0.30,
		StaffPeakMinSep:    2,
		StaffGapTolerance:  0.22,
		StaffMinGap:        3,
		MinSpacing:         4,
		FallbackSpacingDiv: 80,

		GrandStaffLookahead: 4,
		GrandStaffGapTarget: 5.5,
		GrandStaffGapMin:    2.0,
		GrandStaffGapMax:    10.0,
		SystemPad:           2.5,

		NoiseAreaFrac: 0.03,

		StrokeGap:          2,
		StrokeMinLen:       2.2,
		StrokeMaxWidth:     0.35,
		StrokeCompMinLong:  2.0,
		StrokeCompMaxShort: 1.0,
		StrokeDilate:       1,
		StaffBandHalf:      0.15,

		ProtectCoreMin: 0.45,
		ProtectCoreMax: 2.6,
		ProtectDilate:  0.15,

		HoleMinWidth:  0.3,
		HoleMaxHeight: 0.7,
		HoleMinAspect: 1.25,
		HoleMaxFill:   0.88,
		HoleRingPad:   0.35,

		DirMinLen:   [4]float64{2.5, 2.2, 1.8, 1.8},
		DirMaxWidth: [4]float64{0.35, 0.35, 0.45, 0.45},

		HRunMinLen:   3.0,
		HRunMaxThick: 0.35,
		HRunMaxErase: 0.06,

		BarlineSymbolZoneFrac: 0.40,
		BarlineSymbolZoneMax:  8.0,
		BarlineBandPad:        0.25,
		BarlineMinRunFrac:     0.72,
		BarlineMinInkFrac:     0.20,
		BarlineThickness:      0.16,
		BarlinePublishScore:   0.80,
		BarlineVetoScore:      0.60,
		BarlineMergeGap:       2,

		HeadWidth:          1.3,
		HeadHeight:         1.0,
		CandidateMinDim:    0.3,
		CandidateMaxDim:    12.0,
		CandidateMaxAspect: 8.0,
		SplitTrigger:       1.6,
		SplitBeamRow:       0.80,
		SplitMinSupport:    0.45,
		SplitForceAspect:   1.8,
		SplitNMSIoU:        0.5,

		MaxStepIndex:      20,
		StepSoftTol:       0.35,
		StepHardTol:       0.60,
		GapBassBias:       1.0,
		FallbackGateScore: 0.5,

		FillTarget:        0.48,
		FillSlack:         0.15,
		ColumnStemShare:   0.66,
		ColumnStemPenalty: 0.35,
		EccentricityHigh:  5.0,
		ThinStroke:        0.30,
		ThinPenalty:       0.4,
		GateWeight:        1.55,
		ShapeWeight:       1.15,

		StrongShape:   0.72,
		StrongOverlap: 0.18,
		MinInkExtent:  0.08,

		ClusterAreaFrac:     0.18,
		ClusterRadius:       1.0,
		ClusterMinNeighbors: 3,
		SlotBin:             0.6,
		DedupeRadius:        0.35,
	}
}
