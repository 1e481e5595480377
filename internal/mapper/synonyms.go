package mapper

// synonyms maps normalized form-field labels to the canonical profile
// attribute they usually mean. Matches through this table score slightly
// below an exact attribute-name match.
var synonyms = map[string]string{
	"given name":            "first_name",
	"forename":              "first_name",
	"first":                 "first_name",
	"surname":               "last_name",
	"family name":           "last_name",
	"last":                  "last_name",
	"name":                  "full_name",
	"your name":             "full_name",
	"legal name":            "full_name",
	"email address":         "email",
	"e mail":                "email",
	"e mail address":        "email",
	"contact email":         "email",
	"phone number":          "phone",
	"telephone":             "phone",
	"mobile":                "phone",
	"mobile number":         "phone",
	"cell phone":            "phone",
	"contact number":        "phone",
	"city":                  "location",
	"current location":      "location",
	"where are you located": "location",
	"address":               "location",
	"linkedin":              "linkedin_url",
	"linkedin profile":      "linkedin_url",
	"linkedin url":          "linkedin_url",
	"portfolio":             "website_url",
	"personal website":      "website_url",
	"website":               "website_url",
	"github":                "website_url",
	"resume":                "resume_file",
	"cv":                    "resume_file",
	"resume cv":             "resume_file",
	"upload resume":         "resume_file",
	"attach resume":         "resume_file",
	"cover letter":          "cover_letter_file",
	"covering letter":       "cover_letter_file",
	"years of experience":   "years_experience",
	"experience":            "years_experience",
	"total experience":      "years_experience",
	"work authorization":    "work_authorization",
	"authorized to work":    "work_authorization",
	"visa status":           "work_authorization",
	"right to work":         "work_authorization",
	"sponsorship":           "work_authorization",
}
