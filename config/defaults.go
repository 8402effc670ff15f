package config

// Default returns the 2025 meet catalog. Kept in code rather than a bundled
// file so the binaries work with zero external configuration; a YAML catalog
// passed via CATALOG_PATH overrides any of these values.
func Default() *Config {
	return &Config{
		Teams: []TeamAccount{
			{TeamID: "Chamba", Username: "chamba", Password: "Ch@mba2025"},
			{TeamID: "Dharamshala", Username: "dharamshala", Password: "Dhar@2025"},
			{TeamID: "Mandi", Username: "mandi", Password: "M@ndi2025"},
			{TeamID: "Solan", Username: "solan", Password: "S0lan2025", ReducedFee: true},
			{TeamID: "Hamirpur", Username: "hamirpur", Password: "HamiR2025"},
			{TeamID: "Bilaspur", Username: "bilaspur", Password: "BilaP2025", ReducedFee: true},
			{TeamID: "Nahan", Username: "nahan", Password: "Nahan2025#"},
			{TeamID: "Wildlife", Username: "wildlife", Password: "Wild2025!"},
			{TeamID: "Kullu", Username: "kullu", Password: "Kullu2025#"},
			{TeamID: "Rampur", Username: "rampur", Password: "Rampur2025"},
			{TeamID: "Shimla", Username: "shimla", Password: "Shimla2025"},
			{TeamID: "HPSFDC", Username: "hpsfdc", Password: "HPSFDC2025"},
			{TeamID: "Direction", Username: "direction", Password: "Direct2025"},
		},
		Admins: []AdminAccount{
			{Role: "Admin1", Username: "admin1", Password: "Adm1n#Chamba"},
			{Role: "Admin2", Username: "admin2", Password: "Adm2n#Chamba"},
			{Role: "Admin3", Username: "admin3", Password: "Adm3n#Chamba"},
		},
		Sports: []string{
			"100 m", "200 m", "400 m", "800 m", "1500 m", "5000 m", "4x100 m relay",
			"Long Jump", "High Jump", "Triple Jump", "Discuss Throw", "Shotput", "Javelin throw",
			"400 m walking", "800 m walking", "Chess", "Carrom (Singles)", "Carrom (Doubles)",
			"Table Tennis(Singles)", "Table Tennis(Doubles)", "Table Tennis (Mix Doubles)",
			"Badminton (Singles)", "Badminton (Doubles)", "Badminton (Mixed Doubles)",
			"Volleyball", "Kabaddi", "Basketball", "Tug of War", "Football", "Lawn Tennis",
			"Quiz", "10k Marathon",
		},
		Designations: []string{
			"PCCF", "APCCF", "CCF", "CF", "DCF/DFO", "ACF", "RFO",
			"Block Officer/Forest Guard", "Ministerial Staff", "Van Mitra", "Others",
		},
		BloodTypes: []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"},
		AgeClasses: AgeClassMaster{
			Male: []AgeClass{
				{ID: "men_open", Label: "Men - Open"},
				{ID: "men_vet", Label: "Men - Veteran (45+)"},
				{ID: "men_sr_vet", Label: "Men - Senior Veteran (53+)"},
			},
			Female: []AgeClass{
				{ID: "women_open", Label: "Women - Open"},
				{ID: "women_vet", Label: "Women - Veteran (40+)"},
			},
		},
		Fees: FeeTable{
			BaseFee:        300000,
			ReducedBaseFee: 250000,
			FreePlayers:    35,
			ExtraPerPlayer: 7500,
		},
		MaxTeamSize: 80,
	}
}
