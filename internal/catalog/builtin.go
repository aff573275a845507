package catalog

import "github.com/cricketreels/backend/internal/models"

// Builtin returns the reels shipped with the service.
func Builtin() []models.Video {
	return []models.Video{
		{ID: 1, URL: "https://www.instagram.com/reel/C84bjTnRXgI/", Platform: models.PlatformInstagram},
		{ID: 2, URL: "https://www.instagram.com/reel/C836XCbSopm/", Platform: models.PlatformInstagram},
		{ID: 3, URL: "https://www.instagram.com/reel/C81-sEWvS3f/", Platform: models.PlatformInstagram},
		{ID: 4, URL: "https://www.instagram.com/reel/C81FkbaoAyr/", Platform: models.PlatformInstagram},
		{ID: 5, URL: "https://www.instagram.com/reel/C8z8eLRyu1S/", Platform: models.PlatformInstagram},
		{ID: 6, URL: "https://www.instagram.com/reel/C81WnNQShY_/", Platform: models.PlatformInstagram},
		{ID: 7, URL: "https://www.instagram.com/reel/C8u-m4ry-Zh/", Platform: models.PlatformInstagram},
		{ID: 8, URL: "https://www.instagram.com/reel/C8hHKSFSChD/", Platform: models.PlatformInstagram},
		{ID: 9, URL: "https://www.instagram.com/reel/C81Aab7PpOY/", Platform: models.PlatformInstagram},
		{ID: 10, URL: "https://www.instagram.com/reel/C5aseMUxU23/", Platform: models.PlatformInstagram},
		{ID: 11, URL: "https://www.instagram.com/reel/C81r2l8q_ZD/", Platform: models.PlatformInstagram},
		{ID: 12, URL: "https://www.instagram.com/reel/C81DCXJtNxO/", Platform: models.PlatformInstagram},
		{ID: 13, URL: "https://www.instagram.com/reel/C81k_gzoQA5/", Platform: models.PlatformInstagram},
		{ID: 14, URL: "https://www.instagram.com/reel/C81cIjXoa8p/", Platform: models.PlatformInstagram},
		{ID: 15, URL: "https://www.instagram.com/reel/C81fuSWvbse/", Platform: models.PlatformInstagram},
		{ID: 16, URL: "https://www.instagram.com/reel/C8z_yeWSCLx/", Platform: models.PlatformInstagram},
		{ID: 17, URL: "https://www.instagram.com/reel/C8wdSflxpEB/", Platform: models.PlatformInstagram},
		{ID: 18, URL: "https://www.instagram.com/reel/C8z8-McSV5T/", Platform: models.PlatformInstagram},
		{ID: 19, URL: "https://www.instagram.com/reel/C80G5FesXj0/", Platform: models.PlatformInstagram},
		{ID: 20, URL: "https://www.instagram.com/reel/C8z0F7CyxO6/", Platform: models.PlatformInstagram},
		{ID: 21, URL: "https://www.instagram.com/reel/C81Co59Otd4/", Platform: models.PlatformInstagram},
		{ID: 22, URL: "https://www.instagram.com/reel/C8zq64uIDmQ/", Platform: models.PlatformInstagram},
		{ID: 23, URL: "https://www.instagram.com/reel/C8z9h0Qyl7A/", Platform: models.PlatformInstagram},
		{ID: 24, URL: "https://www.instagram.com/reel/C8BHYSRyn1f/", Platform: models.PlatformInstagram},
		{ID: 25, URL: "https://www.instagram.com/reel/C80CpLzy38d/", Platform: models.PlatformInstagram},
		{ID: 26, URL: "https://www.instagram.com/reel/C8z74PJyES-/", Platform: models.PlatformInstagram},
		{ID: 27, URL: "https://www.instagram.com/reel/C80v5wISlnd/", Platform: models.PlatformInstagram},
		{ID: 28, URL: "https://www.instagram.com/reel/C81HIudJ6Tl/", Platform: models.PlatformInstagram},
		{ID: 29, URL: "https://www.instagram.com/reel/C80KV7mSEeq/", Platform: models.PlatformInstagram},
		{ID: 30, URL: "https://www.instagram.com/reel/C80awOzy6qK/", Platform: models.PlatformInstagram},
		{ID: 31, URL: "https://www.instagram.com/reel/C80_wWOyNGT/", Platform: models.PlatformInstagram},
		{ID: 32, URL: "https://www.instagram.com/reel/C84FLChyJZC/", Platform: models.PlatformInstagram},
		{ID: 33, URL: "https://www.instagram.com/reel/C8m04_QsGOR/", Platform: models.PlatformInstagram},
		{ID: 34, URL: "https://www.instagram.com/reel/C82CfTDijL-/", Platform: models.PlatformInstagram},
		{ID: 35, URL: "https://www.instagram.com/reel/C8m2G_9SpMa/", Platform: models.PlatformInstagram},
		{ID: 36, URL: "https://www.instagram.com/reel/C81UfkBgeoO/", Platform: models.PlatformInstagram},
		{ID: 37, URL: "https://www.instagram.com/reel/C8vDiSqSide/", Platform: models.PlatformInstagram},
	}
}
