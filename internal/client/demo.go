package client

import "montessori/server/internal/policy"

// DemoData fabricates the canned payload for a resource in simulated mode.
// It is a pure function: no clock, no randomness, no state, so repeated
// calls with the same arguments are deep-equal. An unknown resource returns
// nil and the dispatcher picks the fallback.
func DemoData(resource Resource, session Session) map[string]any {
	switch resource {
	case ResourceStudyMaterials:
		return map[string]any{
			"materials": []map[string]any{
				{"id": "1", "name": "Topic-1: Language Arts", "weeks": 4, "category": "language", "month": "august", "description": "Introduction to phonics and basic reading skills"},
				{"id": "2", "name": "Topic-2: Mathematics", "weeks": 6, "category": "math", "month": "september", "description": "Number recognition and basic counting"},
				{"id": "3", "name": "Topic-3: Cultural Studies", "weeks": 3, "category": "culture", "month": "october", "description": "Geography and world cultures introduction"},
				{"id": "4", "name": "Topic-4: Practical Life", "weeks": 2, "category": "practical", "month": "november", "description": "Daily living skills and independence"},
			},
		}
	case ResourceTeachers:
		return map[string]any{
			"teachers": []map[string]any{
				{
					"id":                 "1",
					"name":               "Ms. Sarah Johnson",
					"employee_number":    "EMP001",
					"email":              "teacher@montessori.edu",
					"address":            "123 School St, City, State",
					"work_authorization": "Authorized",
					"designation":        "Lead Teacher",
					"salary_type":        "Bi-Weekly",
					"wage_per_hour":      25.50,
				},
				{
					"id":                 "2",
					"name":               "Mr. David Chen",
					"employee_number":    "EMP002",
					"email":              "david.chen@montessori.edu",
					"address":            "456 Education Ave, City, State",
					"work_authorization": "Authorized",
					"designation":        "Assistant Teacher",
					"salary_type":        "Bi-Weekly",
					"wage_per_hour":      22.00,
				},
			},
		}
	case ResourceAnnouncements:
		return map[string]any{
			"announcements": []map[string]any{
				{
					"id":              "1",
					"title":           "Welcome Back to School!",
					"content":         "We are excited to welcome all students and families back for the new academic year. Please review the updated school policies in your parent handbook.",
					"priority":        "normal",
					"target_audience": "all",
					"created_by":      session.UserID,
				},
				{
					"id":              "2",
					"title":           "Parent-Teacher Conference Schedule",
					"content":         "Parent-teacher conferences will be held next week. Please check your email for scheduled appointment times.",
					"priority":        "high",
					"target_audience": "parents",
					"created_by":      session.UserID,
				},
			},
		}
	case ResourceGallery:
		return map[string]any{
			"photos": []map[string]any{
				{
					"id":          "1",
					"title":       "Art Class Masterpieces",
					"description": "Students created beautiful paintings during our art session",
					"imageUrl":    "https://images.unsplash.com/photo-1513475382585-d06e58bcb0e0?w=400",
					"classroom":   "Primary A",
					"uploaded_by": session.UserID,
				},
				{
					"id":          "2",
					"title":       "Science Experiment Fun",
					"description": "Learning about plants and growth in our garden",
					"imageUrl":    "https://images.unsplash.com/photo-1576086213369-97a306d36557?w=400",
					"classroom":   "Primary B",
					"uploaded_by": session.UserID,
				},
			},
		}
	case ResourceChildInfo:
		return map[string]any{
			"childName": "Emma Smith",
			"className": "Primary A",
			"age":       "4-6",
			"teacher":   "Ms. Johnson",
			"recentActivities": []string{
				"Completed phonics lesson",
				"Participated in art class",
				"Practiced counting with manipulatives",
			},
		}
	case ResourceUserRole:
		role := session.Role
		if !role.Valid() {
			role = policy.RoleParent
		}
		return map[string]any{"role": string(role)}
	default:
		return nil
	}
}
