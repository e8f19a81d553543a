package normalize

// DefaultRules returns the embedded rule set. Entries carry the term name of
// each code in a comment; they are data fixes tied to the terminology release
// and are expected to be reviewed when the release is bumped.
func DefaultRules() *Rules {
	return &Rules{
		Hierarchy: []HierarchyRule{
			{
				Name: "solid-neoplasm-descendants",
				AnchorParents: []string{
					"C9305", // Malignant Neoplasm
					"C3263", // Neoplasm by Site
				},
				ExcludeCodes: []string{
					"C9305",  // Malignant Neoplasm itself
					"C3262",  // Neoplasm
					"C3263",  // Neoplasm by Site
					"C27134", // Hematopoietic and Lymphoid Cell Neoplasm
					"C9300",  // Hematopoietic and Lymphoid System Neoplasm
					"C4741",  // Leukemia
					"C9357",  // Lymphoma
				},
				AddParents: []string{
					"C132146", // Solid Neoplasm
				},
			},
			{
				Name: "hematologic-neoplasm-descendants",
				AnchorParents: []string{
					"C27134", // Hematopoietic and Lymphoid Cell Neoplasm
					"C9300",  // Hematopoietic and Lymphoid System Neoplasm
				},
				AddParents: []string{
					"C27134", // Hematopoietic and Lymphoid Cell Neoplasm
				},
			},
		},
		AddEdges: []EdgeRule{
			{Child: "C132146", Parent: "C9305"}, // Solid Neoplasm -> Malignant Neoplasm
			{Child: "C27134", Parent: "C9305"},  // Hematopoietic and Lymphoid Cell Neoplasm -> Malignant Neoplasm
			{Child: "C9385", Parent: "C132146"}, // Malignant Solid Tumor -> Solid Neoplasm
		},
		AddSynonyms: []SynonymRule{
			{Code: "C132146", Synonym: "Solid Tumor"},
			{Code: "C27134", Synonym: "Hematologic Malignancy"},
			{Code: "C2926", Synonym: "NSCLC"}, // Lung Non-Small Cell Carcinoma
		},
		RemoveSynonyms: []SynonymRule{
			// Gene symbols that also appear as generic synonyms of unrelated
			// concepts and would produce false matches in text annotation.
			{Code: "C18325", Synonym: "CALR"},  // Calreticulin mutation concept vs CALR gene
			{Code: "C128784", Synonym: "MET"},  // MET alteration concept vs the verb "met"
			{Code: "C3910", Synonym: "Marker"}, // Molecular Abnormality
		},
		ExcludeConcepts: []string{
			"C38758", // Positive
			"C38757", // Negative
			"C14165", // Normal
			"C48660", // Not Applicable
			"C17998", // Unknown
		},
		GenericSynonyms: []string{
			"Positive",
			"Negative",
			"Normal",
			"Disease",
			"Cancer",
			"Tumor",
			"Gene",
			"Protein",
			"Mutation",
			"Unknown",
			"Other",
			"Type",
			"Grade",
		},
	}
}
