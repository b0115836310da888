package models

// Enumerations used by the built-in profiles
var (
	EngineTypes = EnumMap{
		0x00: "Don't use",
		0x01: "V6",
		0x02: "V8",
		0x03: "V10",
		0x04: "V12",
		0x05: "Straight 4",
		0x06: "Straight 5",
		0x07: "Straight 6",
		0x08: "Rotary 2",
		0x09: "Rotary 3",
		0x0A: "Flat 4",
		0x0B: "Flat 6",
		0x0C: "W16",
		0x0D: "W12",
		0x0E: "Single Cylinder",
		0x0F: "Twin Cylinder",
		0x10: "Flat 8",
		0x11: "Flat 12",
	}
	Drivetrains  = EnumMap{0: "RWD", 1: "AWD", 2: "FWD"}
	BoostTypes   = EnumMap{0: "Natural Aspiration", 1: "Supercharged", 2: "Turbo"}
	Aspirations  = EnumMap{0: "Naturally aspirated", 1: "Boosted"}
	ShiftTypes   = EnumMap{0: "H Pattern", 1: "Sequential"}
	TickRates    = EnumMap{180: "180 Hz", 360: "360 Hz", 540: "540 Hz"}
	BoolEnum     = EnumMap{0: "False", 1: "True"}
	TyreCompound = []string{
		"Soft / Semi Slick",
		"Medium",
		"Hard",
		"Intermediate",
		"Wet",
		"Extreme",
		"All Weather",
	}
)

// StatsProfile describes the vehicle statistics MRDF layout
var StatsProfile = MustProfile(ProfileInfo{
	Key:            "stats",
	Label:          "Statistics MRDF",
	Version:        1,
	FilenameTokens: []string{"stats"},
}, []FieldDef{
	{Name: "TopSpeed_mps", Section: "PERFORMANCE", Offset: 0x20, Type: Float32, Notes: "Top speed in meters/sec. MPH*0.447"},
	{Name: "Accel_0_100_kmh", Section: "PERFORMANCE", Offset: 0x24, Type: Float32, Notes: "0-100km/h time (seconds)"},
	{Name: "Gear_for_100_kmh", Section: "PERFORMANCE", Offset: 0x28, Type: UInt32, Notes: "Gear needed to reach 100km/h"},
	{Name: "Accel_0_160_kmh", Section: "PERFORMANCE", Offset: 0x2C, Type: Float32, Notes: "0-160km/h time (seconds)"},
	{Name: "Gear_for_160_kmh", Section: "PERFORMANCE", Offset: 0x30, Type: UInt32, Notes: "Gear needed to reach 160km/h"},
	{Name: "Braking_100_0_kmh", Section: "PERFORMANCE", Offset: 0x34, Type: Float32, Notes: "100-0km/h time (seconds)"},
	{Name: "PerformanceIndex_PI", Section: "PERFORMANCE", Offset: 0x38, Type: Float32, Notes: "Performance rating (not used in-game)"},
	{Name: "Mass_kg", Section: "PERFORMANCE", Offset: 0x3C, Type: Float32, Notes: "Mass in kg"},

	{Name: "NumGears", Section: "DRIVETRAIN", Offset: 0x40, Type: UInt32, Notes: "Number of gears in transmission"},
	{Name: "Torque_lbft", Section: "DRIVETRAIN", Offset: 0x44, Type: Float32, Notes: "Torque in lb-ft"},
	{Name: "HP_SAE_Net", Section: "DRIVETRAIN", Offset: 0x48, Type: Float32, Notes: "Horsepower (SAE Net)"},
	{Name: "DrivetrainType", Section: "DRIVETRAIN", Offset: 0x4C, Type: UInt32, Notes: "00=RWD,01=AWD,02=FWD", Enum: Drivetrains,
		Plausible: &Plausibility{Values: []int64{0, 1, 2}}},

	{Name: "BoostType", Section: "ENGINE", Offset: 0x50, Type: UInt32, Notes: "0=NA,1=Supercharged,2=Turbo", Enum: BoostTypes},
	{Name: "Aspiration", Section: "ENGINE", Offset: 0x54, Type: UInt32, Notes: "0=NA,1=Boosted", Enum: Aspirations},
	{Name: "HandlingPerformance", Section: "HANDLING", Offset: 0x58, Type: Float32, Notes: "Handling performance"},
	{Name: "Unknown_0x5C", Section: "UNKNOWN", Offset: 0x5C, Type: UInt32, Notes: "Unknown"},
	{Name: "Unknown_0x60", Section: "UNKNOWN", Offset: 0x60, Type: UInt32, Notes: "Unknown"},

	{Name: "EngineType", Section: "ENGINE", Offset: 0x64, Type: UInt32, Notes: "Engine type enum", Enum: EngineTypes},
	{Name: "TierLevel", Section: "META", Offset: 0x68, Type: UInt32, Notes: "Tier level"},

	{Name: "Unknown_0x6C", Section: "UNKNOWN", Offset: 0x6C, Type: Float32, Notes: "Unknown float"},
	{Name: "Unknown_0x70", Section: "UNKNOWN", Offset: 0x70, Type: Float32, Notes: "Unknown float"},
	{Name: "Unknown_0x74", Section: "UNKNOWN", Offset: 0x74, Type: UInt32, Notes: "Unknown (often 0x80000000 in sample)"},
	{Name: "Unknown_0x78", Section: "UNKNOWN", Offset: 0x78, Type: Float32, Notes: "Unknown float"},
	{Name: "Unknown_0x7C", Section: "UNKNOWN", Offset: 0x7C, Type: Float32, Notes: "Unknown float"},

	{Name: "BodyHeightAdjust_m", Section: "CHASSIS", Offset: 0x80, Type: Float32, Notes: "Menu-only body height adjust (m)"},
	{Name: "Wheelbase_m", Section: "CHASSIS", Offset: 0x84, Type: Float32, Notes: "Wheelbase (m)",
		Plausible: &Plausibility{Min: 1.0, Max: 6.0}},
	{Name: "RearWeightDistribution", Section: "CHASSIS", Offset: 0x88, Type: Float32, Notes: "Rear weight distribution (0..1)"},

	{Name: "ABS", Section: "ASSISTS", Offset: 0x8C, Type: Bool32, Notes: "ABS enabled (1=true)",
		Plausible: &Plausibility{Values: []int64{0, 1}}},
	{Name: "TC", Section: "ASSISTS", Offset: 0x90, Type: Bool32, Notes: "Traction Control (1=true)"},
	{Name: "SC", Section: "ASSISTS", Offset: 0x94, Type: Bool32, Notes: "Stability Control (1=true)"},

	{Name: "CorneringDifficulty", Section: "HANDLING", Offset: 0x98, Type: UInt32, Notes: "Cornering difficulty (1,2,3)"},
	{Name: "CorneringSpeed", Section: "HANDLING", Offset: 0x9C, Type: UInt32, Notes: "Cornering speed (1,2,3)"},

	{Name: "EngineDisplacement", Section: "ENGINE", Offset: 0xA0, Type: Float32, Notes: "Engine displacement (units: litres)"},
	{Name: "ShiftType", Section: "DRIVETRAIN", Offset: 0xA4, Type: UInt32, Notes: "00=H Pattern,01=Sequential", Enum: ShiftTypes,
		Plausible: &Plausibility{Values: []int64{0, 1}}},
	{Name: "DRS_Enabled", Section: "AERO", Offset: 0xA8, Type: Bool32, Notes: "DRS available (1=true)"},
	{Name: "BoostButton", Section: "ENGINE", Offset: 0xAC, Type: Bool32, Notes: "Boost button available (1=true)"},
	{Name: "AdjustableTurbo", Section: "ENGINE", Offset: 0xB0, Type: Bool32, Notes: "Adjustable turbo available (1=true)"},
	{Name: "OnboardRollBars", Section: "CHASSIS", Offset: 0xB4, Type: Bool32, Notes: "Onboard roll bars adjustable (1=true)"},
	{Name: "OnboardBrakeBias", Section: "BRAKES", Offset: 0xB8, Type: Bool32, Notes: "Onboard brake bias adjustable (1=true)"},

	// Low byte of a u32 slot; the remaining three bytes are left unmapped.
	{Name: "TyreAvailability", Section: "TYRES", Offset: 0xBC, Type: Bitmask8, BitLabels: TyreCompound,
		Notes: "Tyre availability bitmask (0x40=All Weather override)"},

	{Name: "Headlights", Section: "ELECTRICAL", Offset: 0xC0, Type: Bool32, Notes: "Headlights available (1=true)"},
	{Name: "PitLimiter", Section: "DRIVETRAIN", Offset: 0xC4, Type: Bool32, Notes: "Pit limiter available (1=true)"},
})

// PhysicsProfile describes the physics tweaker MRDF layout
var PhysicsProfile = MustProfile(ProfileInfo{
	Key:            "physics",
	Label:          "Physics Tweaker MRDF",
	Version:        1,
	FilenameTokens: []string{"physicstweaker", "/physics/"},
}, []FieldDef{
	{Name: "BrakeGlowMinTemp", Section: "BRAKES", Offset: 0x0030, Type: Float32, Notes: "Brake glow minimum temp",
		Plausible: &Plausibility{Min: 100, Max: 5000}},
	{Name: "BrakeGlowMaxTemp", Section: "BRAKES", Offset: 0x0034, Type: Float32, Notes: "Brake glow maximum temp",
		Plausible: &Plausibility{Min: 100, Max: 10000}},
	{Name: "BrakeGlowScaleAI", Section: "BRAKES", Offset: 0x0038, Type: Float32, Notes: "Brake glow scale for AI",
		Plausible: &Plausibility{Min: 0, Max: 10}},
	{Name: "BrakeGlowScalePlayer", Section: "BRAKES", Offset: 0x003C, Type: Float32, Notes: "Brake glow scale for Player",
		Plausible: &Plausibility{Min: 0, Max: 10}},

	{Name: "ContinuousCDThickness", Section: "JOINTS", Offset: 0x0048, Type: Float32, Notes: "Continuous CD Thickness"},
	{Name: "JointIterations", Section: "JOINTS", Offset: 0x004C, Type: UInt32, Notes: "Joint Iterations (integer in dumps)"},
	{Name: "JointStrength", Section: "JOINTS", Offset: 0x0050, Type: Float32, Notes: "Joint Strength"},

	{Name: "EnableAntiFlipAid", Section: "ANTI-FLIP", Offset: 0x0054, Type: UInt32, Notes: "Enable Anti Flip Aid (0/1)", Enum: BoolEnum},
	{Name: "AntiFlipMinAngle", Section: "ANTI-FLIP", Offset: 0x0058, Type: Float32, Notes: "Anti Flip Minimum Angle (deg)"},
	{Name: "AntiFlipMaxAngle", Section: "ANTI-FLIP", Offset: 0x005C, Type: Float32, Notes: "Anti Flip Maximum Angle (deg)"},
	{Name: "AntiFlipTorqueForce", Section: "ANTI-FLIP", Offset: 0x0060, Type: Float32, Notes: "Anti Flip Torque Fixing Force"},
	{Name: "AntiFlipOrientForce", Section: "ANTI-FLIP", Offset: 0x0064, Type: Float32, Notes: "Anti Flip Orientation Fixing Force"},

	{Name: "MinBumpStopForce", Section: "SUSPENSION", Offset: 0x02F0, Type: Float32, Notes: "Minimum Bump Stop Force"},
	{Name: "MaxBumpStopForce", Section: "SUSPENSION", Offset: 0x02F4, Type: Float32, Notes: "Maximum Bump Stop Force"},

	{Name: "DraftMinSpeed", Section: "DRAFTING", Offset: 0x02F8, Type: Float32, Notes: "Drafting Minimum Speed"},
	{Name: "DraftRampSpeed", Section: "DRAFTING", Offset: 0x02FC, Type: Float32, Notes: "Drafting Ramp Speed"},
	{Name: "DraftMaxSpeed", Section: "DRAFTING", Offset: 0x0300, Type: Float32, Notes: "Drafting Maximum Speed"},
	{Name: "DraftMaxDistFront", Section: "DRAFTING", Offset: 0x0304, Type: Float32, Notes: "Drafting Max Distance In Front"},
	{Name: "DraftMinLatFront", Section: "DRAFTING", Offset: 0x0308, Type: Float32, Notes: "Drafting Min Lateral In Front"},
	{Name: "DraftMaxLatFront", Section: "DRAFTING", Offset: 0x030C, Type: Float32, Notes: "Drafting Max Lateral In Front"},
	{Name: "DraftMaxDistBehind", Section: "DRAFTING", Offset: 0x0310, Type: Float32, Notes: "Drafting Max Distance Behind"},
	{Name: "DraftMinLatBehind", Section: "DRAFTING", Offset: 0x0314, Type: Float32, Notes: "Drafting Min Lateral Behind"},
	{Name: "DraftMaxLatBehind", Section: "DRAFTING", Offset: 0x0318, Type: Float32, Notes: "Drafting Max Lateral Behind"},
	{Name: "DraftAirScale", Section: "DRAFTING", Offset: 0x031C, Type: Float32, Notes: "Drafting Air Scale"},

	{Name: "LowSpeedTCAtRest", Section: "ASSISTS", Offset: 0x0320, Type: Float32, Notes: "Low Speed TC At Rest"},
	{Name: "LowSpeedTCSpeedThresh", Section: "ASSISTS", Offset: 0x0324, Type: Float32, Notes: "Low Speed TC Speed Threshold"},
	{Name: "LowSpeedGripAtRest", Section: "ASSISTS", Offset: 0x0328, Type: Float32, Notes: "Low Speed Grip At Rest"},
	{Name: "LowSpeedGripSpeedTh", Section: "ASSISTS", Offset: 0x032C, Type: Float32, Notes: "Low Speed Grip Speed Threshold"},

	{Name: "AutoResetDisableCollT", Section: "RESET", Offset: 0x0330, Type: Float32, Notes: "Auto Reset - Time Collision Is Disabled (s)"},
	{Name: "AutoResetMinSpeedMPH", Section: "RESET", Offset: 0x0334, Type: Float32, Notes: "Auto Reset - Minimum Speed in MPH"},

	{Name: "AutoClutch", Section: "ASSISTS", Offset: 0x0378, Type: UInt32, Notes: "Auto Clutch (0/1)"},
	{Name: "SteeringHelpFunction", Section: "ASSISTS", Offset: 0x037C, Type: UInt32, Notes: "Steering help function"},

	{Name: "PhysicsTickRate", Section: "PHYSICS", Offset: 0x0380, Type: UInt32, Notes: "Physics tick rate", Enum: TickRates},
	{Name: "AutoReverse", Section: "ASSISTS", Offset: 0x0384, Type: UInt32, Notes: "Auto reverse (0/1)", Enum: BoolEnum},
	{Name: "AutoShiftOverrideTime", Section: "ASSISTS", Offset: 0x0388, Type: Float32, Notes: "Auto shift override time (s)"},
	{Name: "ManShiftOverrideTime", Section: "ASSISTS", Offset: 0x038C, Type: Float32, Notes: "Manual shift override time (s)"},

	{Name: "AIStrengthNovice", Section: "AI", Offset: 0x03B0, Type: Float32, Notes: "AI Strength Novice"},
	{Name: "AIStrengthAmateur", Section: "AI", Offset: 0x03B4, Type: Float32, Notes: "AI Strength Amateur"},
	{Name: "AIStrengthPro", Section: "AI", Offset: 0x03B8, Type: Float32, Notes: "AI Strength Pro"},

	{Name: "AIAggressionNovice", Section: "AI", Offset: 0x03BC, Type: Float32, Notes: "AI Aggression Novice"},
	{Name: "AIAggressionNormal", Section: "AI", Offset: 0x03C0, Type: Float32, Notes: "AI Aggression Normal"},
	{Name: "AIAggressionXP", Section: "AI", Offset: 0x03C4, Type: Float32, Notes: "AI Aggression XP"},
	{Name: "AIAggressionPro", Section: "AI", Offset: 0x03C8, Type: Float32, Notes: "AI Aggression Pro"},

	{Name: "FuelMult", Section: "AI", Offset: 0x03D4, Type: UInt32, Notes: "Fuel mult"},
	{Name: "TyreMult", Section: "AI", Offset: 0x03D8, Type: UInt32, Notes: "Tire mult"},
})

// Builtin returns a fresh registry holding the built-in profiles. Stats is
// declared first and therefore wins detection ties.
func Builtin() *Registry {
	r, err := NewRegistry(StatsProfile, PhysicsProfile)
	if err != nil {
		panic(err)
	}
	return r
}
