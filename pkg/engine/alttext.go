package engine

import (
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/types"
)

var categoryAlt = map[types.Category]string{
	types.CategoryEducational:   "Abstract illustration supporting an educational post",
	types.CategoryPromotion:     "Abstract promotional graphic with bold shapes and colour",
	types.CategorySocialProof:   "Abstract graphic conveying appreciation and trust",
	types.CategoryLocalAbstract: "Abstract scene evoking a local neighbourhood atmosphere",
	types.CategoryEvergreen:     "Abstract decorative background image",
}

var platformAlt = map[types.Platform]string{
	types.PlatformInstagram:             "Instagram",
	types.PlatformFacebook:              "Facebook",
	types.PlatformX:                     "X",
	types.PlatformGoogleBusinessProfile: "a Google Business Profile",
	types.PlatformBlog:                  "a blog article",
}

// AltText builds accessibility text from the decision's category and
// platform. It never looks at overlay text, brand fields or the prompt.
func AltText(d *types.Decision) string {
	subject, ok := categoryAlt[d.Category]
	if !ok {
		subject = "Abstract decorative image"
	}
	dest, ok := platformAlt[d.Platform]
	if !ok {
		return subject
	}
	return subject + " for " + dest
}
