package catalog

// Default returns the built-in 2026 Science Olympiad astronomy catalog
// (Division C, stellar evolution and exoplanets focus). Callers may override
// it per job submission.
func Default() Catalog {
	return Catalog{
		{
			Name:        "stellar_evolution_basics",
			Description: "Core concepts of how stars change over time",
			Topics: []string{
				"Stellar evolution",
				"Star formation",
				"Jeans mass",
				"Protostar",
				"Pre-main-sequence star",
				"Zero-age main sequence",
				"Main sequence",
				"Stellar mass",
				"Mass-luminosity relation",
			},
		},
		{
			Name:        "stellar_classification",
			Description: "Classification systems and stellar properties",
			Topics: []string{
				"Stellar classification",
				"Hertzsprung-Russell diagram",
				"Spectral type",
				"Luminosity class",
				"Morgan-Keenan classification",
				"Color index",
				"Effective temperature",
				"Absolute magnitude",
				"Apparent magnitude",
			},
		},
		{
			Name:        "star_formation_regions",
			Description: "Processes and regions of star formation",
			Topics: []string{
				"Molecular cloud",
				"Giant molecular cloud",
				"Bok globule",
				"H II region",
				"H I region",
				"Interstellar medium",
				"Herbig-Haro object",
				"T Tauri star",
				"Herbig Ae/Be star",
				"Protoplanetary disk",
				"Debris disk",
				"Bipolar outflow",
			},
		},
		{
			Name:        "low_mass_evolution",
			Description: "Evolution of low and medium mass stars",
			Topics: []string{
				"Red dwarf",
				"Brown dwarf",
				"Subgiant",
				"Red giant branch",
				"Red giant",
				"Horizontal branch",
				"Asymptotic giant branch",
				"Planetary nebula",
				"White dwarf",
				"Chandrasekhar limit",
				"Electron degeneracy pressure",
			},
		},
		{
			Name:        "high_mass_evolution",
			Description: "Evolution of massive stars",
			Topics: []string{
				"Blue giant",
				"Blue supergiant",
				"Red supergiant",
				"Wolf-Rayet star",
				"Luminous blue variable",
				"Supernova",
				"Core-collapse supernova",
				"Type II supernova",
				"Supernova remnant",
				"Neutron star",
				"Pulsar",
				"Magnetar",
				"Black hole",
			},
		},
		{
			Name:        "binary_variable_stars",
			Description: "Binary systems and variable stars",
			Topics: []string{
				"Binary star",
				"Eclipsing binary",
				"Spectroscopic binary",
				"Type Ia supernova",
				"Nova",
				"Variable star",
				"Cepheid variable",
				"RR Lyrae variable",
				"Mira variable",
			},
		},
		{
			Name:        "stellar_physics",
			Description: "Physical processes in stars",
			Topics: []string{
				"Nuclear fusion",
				"Proton-proton chain",
				"CNO cycle",
				"Triple-alpha process",
				"Stellar nucleosynthesis",
				"S-process",
				"R-process",
				"Hydrostatic equilibrium",
				"Radiation pressure",
				"Convection zone",
				"Radiative zone",
				"Stellar core",
			},
		},
		{
			Name:        "exoplanet_detection",
			Description: "Methods for detecting exoplanets",
			Topics: []string{
				"Exoplanet",
				"Methods of detecting exoplanets",
				"Transit photometry",
				"Doppler spectroscopy",
				"Radial velocity method",
				"Direct imaging",
				"Gravitational microlensing",
				"Astrometry",
			},
		},
		{
			Name:        "exoplanet_types",
			Description: "Types and characteristics of exoplanets",
			Topics: []string{
				"Hot Jupiter",
				"Super-Earth",
				"Mini-Neptune",
				"Gas giant",
				"Terrestrial planet",
				"Habitable zone",
				"Planetary equilibrium temperature",
			},
		},
		{
			Name:        "exoplanet_missions",
			Description: "Space missions for exoplanet discovery",
			Topics: []string{
				"Kepler space telescope",
				"TESS (spacecraft)",
				"James Webb Space Telescope",
			},
		},
		{
			Name:        "2026_dsos",
			Description: "Official 2026 Science Olympiad Deep Sky Objects",
			Topics: []string{
				"Orion Molecular Cloud Complex",
				"NGC 6559",
				"Sharpless 29",
				"HP Tau",
				"T Tauri star",
				"Mira",
				"Mira variable",
				"Helix Nebula",
				"Janus (star)",
				"White dwarf",
			},
		},
		{
			Name:        "observational_techniques",
			Description: "Measurement techniques and distance determination",
			Topics: []string{
				"Cosmic distance ladder",
				"Parallax",
				"Stellar parallax",
				"Standard candle",
				"Distance modulus",
				"Light curve",
				"Stellar kinematics",
				"Proper motion",
				"Spectroscopy",
				"Photometry",
			},
		},
		{
			Name:        "fundamental_physics",
			Description: "Physics foundations for astronomy",
			Topics: []string{
				"Black-body radiation",
				"Wien's displacement law",
				"Stefan-Boltzmann law",
				"Planck's law",
				"Luminosity",
				"Solar luminosity",
				"Inverse-square law",
				"Kepler's laws of planetary motion",
				"Orbital mechanics",
				"Orbital period",
				"Semi-major axis",
				"Electromagnetic spectrum",
			},
		},
	}
}
