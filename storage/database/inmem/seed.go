package inmemdb

import (
	"time"

	"github.com/pkg/errors"

	"github.com/studybuddy/backend/core/course"
	"github.com/studybuddy/backend/core/qa"
	"github.com/studybuddy/backend/core/report"
	"github.com/studybuddy/backend/core/user"
)

// Seed loads the demo catalog and accounts. Demo credentials:
// john@example.com/student123, jinchun@example.com/instructor123,
// admin@example.com/admin123.
func Seed(db *DB) error {
	usrRepo := NewUserRepository(db)
	crsRepo := NewCourseRepository(db)
	qaRepo := NewQARepository(db)
	repRepo := NewReportRepository(db)

	now := time.Now().UTC()

	newUser := func(name, uname, email, pwd string, role user.Role) (user.User, error) {
		usr := user.User{
			Name:             name,
			Username:         uname,
			Email:            email,
			Role:             role,
			IsActive:         true,
			EnrolledCourses:  []int{},
			CompletedLessons: []int{},
			QuizScores:       []user.QuizScore{},
			Certificates:     []user.Certificate{},
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := usr.SetPassword(pwd); err != nil {
			return user.User{}, err
		}
		return usrRepo.CreateUser(usr)
	}

	instructor, err := newUser("T. JinChun Lu", "jinchun", "jinchun@example.com", "instructor123", user.RoleInstructor)
	if err != nil {
		return errors.Wrap(err, "seeding instructor")
	}
	student, err := newUser("John Doe", "johndoe", "john@example.com", "student123", user.RoleStudent)
	if err != nil {
		return errors.Wrap(err, "seeding student")
	}
	if _, err = newUser("Admin User", "sysadmin", "admin@example.com", "admin123", user.RoleAdmin); err != nil {
		return errors.Wrap(err, "seeding admin")
	}

	for _, crs := range demoCourses(instructor.ID, now) {
		if _, err = crsRepo.CreateCourse(crs); err != nil {
			return errors.Wrap(err, "seeding course "+crs.Title)
		}
	}

	// the student has been around: enrolled in two courses, two lessons and
	// two quizzes behind them
	student.EnrolledCourses = []int{1, 2}
	student.CompletedLessons = []int{1, 2}
	student.QuizScores = []user.QuizScore{
		{QuizID: 1, CourseID: 1, Score: 85, Date: now.AddDate(0, 0, -17)},
		{QuizID: 2, CourseID: 2, Score: 92, Date: now.AddDate(0, 0, -12)},
	}
	if _, err = usrRepo.SaveUser(student); err != nil {
		return errors.Wrap(err, "seeding student history")
	}

	questions := []qa.Question{
		{
			AuthorID: student.ID, Author: student.Name, Role: user.RoleStudent,
			CourseID: 1, CourseName: "Introduction to Web Development",
			Question: "How do I center a div in CSS?",
			Answers:  []qa.Answer{}, Status: qa.StatusWaiting,
			CreatedAt: now.AddDate(0, 0, -7),
		},
		{
			AuthorID: student.ID, Author: student.Name, Role: user.RoleStudent,
			CourseID: 1, CourseName: "Introduction to Web Development",
			Question: "What is the difference between padding and margin?",
			Answers: []qa.Answer{
				{Author: instructor.Name, Text: "Padding is the space inside an element, while margin is the space outside an element."},
			},
			Status:    qa.StatusAnswered,
			CreatedAt: now.AddDate(0, 0, -12),
		},
	}
	for _, q := range questions {
		if _, err = qaRepo.CreateQuestion(q); err != nil {
			return errors.Wrap(err, "seeding questions")
		}
	}

	reports := []report.Report{
		{
			Type: report.TypeTechnical, UserID: student.ID, UserName: student.Name,
			Subject:     "Video not loading in Lesson 3",
			Description: "The video in lesson 3 keeps buffering and won't play.",
			Status:      report.StatusPending, CreatedAt: now.AddDate(0, 0, -6),
		},
		{
			Type: report.TypeContent, UserID: student.ID, UserName: student.Name,
			Subject:     "Video buffering",
			Description: "The video in lesson 5 keeps buffering.",
			Status:      report.StatusResolved, CreatedAt: now.AddDate(0, 0, -8),
		},
	}
	for _, r := range reports {
		if _, err = repRepo.CreateReport(r); err != nil {
			return errors.Wrap(err, "seeding reports")
		}
	}
	return nil
}

func demoCourses(instructorID int, now time.Time) []course.Course {
	return []course.Course{
		{
			Title:       "Introduction to Web Development",
			Description: "Learn the fundamentals of HTML, CSS, and JavaScript to build modern websites.",
			Instructor:  "T. Athiphat Hirunadisuan", InstructorID: instructorID,
			Category: "Programming", Level: "Beginner", Duration: "8 weeks",
			Price: 0, Rating: 4.8, Students: 1250,
			Image: "https://images.unsplash.com/photo-1498050108023-c5249f4df085?w=400",
			Lessons: []course.Lesson{
				{Title: "HTML Basics", Description: "Introduction to HTML structure and elements", Duration: "45 min", Content: "Learn about HTML tags, attributes, and document structure..."},
				{Title: "CSS Fundamentals", Description: "Styling web pages with CSS", Duration: "60 min", Content: "Master CSS selectors, properties, and layout techniques..."},
				{Title: "JavaScript Introduction", Description: "Getting started with JavaScript programming", Duration: "75 min", Content: "Learn variables, functions, and basic programming concepts..."},
			},
			Quizzes: []course.Quiz{
				{
					Title: "HTML Quiz",
					Questions: []course.Question{
						{
							Prompt: "What does HTML stand for?",
							Options: []string{
								"Hyper Text Markup Language",
								"High Tech Modern Language",
								"Home Tool Markup Language",
								"Hyperlinks and Text Markup Language",
							},
							CorrectAnswer: 0,
						},
						{
							Prompt:        "Which HTML tag is used for the largest heading?",
							Options:       []string{"<head>", "<h6>", "<h1>", "<heading>"},
							CorrectAnswer: 2,
						},
					},
				},
			},
			CreatedAt: now,
		},
		{
			Title:       "Data Science with Python",
			Description: "Master data analysis, visualization, and machine learning with Python.",
			Instructor:  "T. Thanachai", InstructorID: instructorID,
			Category: "Data Science", Level: "Intermediate", Duration: "12 weeks",
			Price: 79.99, Rating: 4.9, Students: 890,
			Image: "https://images.unsplash.com/photo-1551288049-bebda4e38f71?w=400",
			Lessons: []course.Lesson{
				{Title: "Python Basics for Data Science", Description: "Essential Python concepts", Duration: "50 min", Content: "Learn Python fundamentals for data analysis..."},
				{Title: "Data Analysis with Pandas", Description: "Working with data frames", Duration: "90 min", Content: "Master Pandas library for data manipulation..."},
			},
			Quizzes: []course.Quiz{
				{
					Title: "Python Fundamentals Quiz",
					Questions: []course.Question{
						{
							Prompt:        "Which library is commonly used for data manipulation in Python?",
							Options:       []string{"NumPy", "Pandas", "Matplotlib", "All of the above"},
							CorrectAnswer: 3,
						},
					},
				},
			},
			CreatedAt: now,
		},
		{
			Title:       "Digital Marketing Masterclass",
			Description: "Learn SEO, social media marketing, and content strategy.",
			Instructor:  "T. Kasidech Tapang", InstructorID: instructorID,
			Category: "Marketing", Level: "Beginner", Duration: "6 weeks",
			Price: 0, Rating: 4.6, Students: 2100,
			Image: "https://images.unsplash.com/photo-1460925895917-afdab827c52f?w=400",
			Lessons: []course.Lesson{
				{Title: "Introduction to Digital Marketing", Description: "Overview of digital marketing channels", Duration: "40 min", Content: "Learn what digital marketing is and why it matters..."},
				{Title: "SEO Basics", Description: "Search engine optimization fundamentals", Duration: "60 min", Content: "Understand keywords, on-page SEO, and ranking factors..."},
				{Title: "Social Media Marketing", Description: "Marketing on social platforms", Duration: "50 min", Content: "Learn strategies for Facebook, Instagram, and TikTok..."},
			},
			Quizzes: []course.Quiz{
				{
					Title: "Digital Marketing Basics Quiz",
					Questions: []course.Question{
						{
							Prompt: "What does SEO stand for?",
							Options: []string{
								"Search Engine Optimization",
								"Social Engagement Optimization",
								"System Engine Output",
								"Search Experience Operation",
							},
							CorrectAnswer: 0,
						},
						{
							Prompt:        "Which platform is best for visual marketing?",
							Options:       []string{"LinkedIn", "Twitter", "Instagram", "Reddit"},
							CorrectAnswer: 2,
						},
					},
				},
			},
			CreatedAt: now,
		},
		{
			Title:       "UI/UX Design Fundamentals",
			Description: "Create visually appealing and user-friendly interfaces that are easy to navigate.",
			Instructor:  "T. Paitoon Porntrakoon", InstructorID: instructorID,
			Category: "Design", Level: "Beginner", Duration: "10 weeks",
			Price: 59.99, Rating: 4.7, Students: 1500,
			Image: "https://images.unsplash.com/photo-1561070791-2526d30994b5?w=400",
			Lessons: []course.Lesson{
				{Title: "Introduction to UI/UX", Description: "Understanding UI vs UX", Duration: "45 min", Content: "Learn the difference between UI and UX design..."},
				{Title: "User Research", Description: "Understanding user needs", Duration: "60 min", Content: "Learn personas, surveys, and usability testing..."},
				{Title: "Wireframing & Prototyping", Description: "Designing layouts and flows", Duration: "75 min", Content: "Create wireframes and interactive prototypes..."},
			},
			Quizzes: []course.Quiz{
				{
					Title: "UI/UX Fundamentals Quiz",
					Questions: []course.Question{
						{
							Prompt:        "What does UX stand for?",
							Options:       []string{"User Experience", "User Extension", "Unified Experience", "User Execution"},
							CorrectAnswer: 0,
						},
					},
				},
			},
			CreatedAt: now,
		},
		{
			Title:       "Mobile App Development",
			Description: "Build cross-platform mobile apps using React Native.",
			Instructor:  "T. Chayapol Moemeng", InstructorID: instructorID,
			Category: "Programming", Level: "Intermediate", Duration: "10 weeks",
			Price: 69.99, Rating: 4.8, Students: 980,
			Image: "https://images.unsplash.com/photo-1518770660439-4636190af475?w=400",
			Lessons: []course.Lesson{
				{Title: "React Native Basics", Description: "Getting started with React Native", Duration: "60 min", Content: "Learn components, styling, and navigation..."},
			},
			CreatedAt: now,
		},
		{
			Title:       "Database System with PostgreSQL",
			Description: "Learn relational database design and SQL using PostgreSQL.",
			Instructor:  "T. JinChun Lu", InstructorID: instructorID,
			Category: "Data Science", Level: "Intermediate", Duration: "8 weeks",
			Price: 0, Rating: 4.9, Students: 1120,
			Image: "https://images.unsplash.com/photo-1555949963-aa79dcee981c?w=400",
			Lessons: []course.Lesson{
				{Title: "Relational Database Basics", Description: "Tables, keys, and relationships", Duration: "70 min", Content: "Learn primary keys, foreign keys, and normalization..."},
			},
			CreatedAt: now,
		},
		{
			Title:       "Software Project Management",
			Description: "Manage software projects using Agile and Scrum.",
			Instructor:  "T. Darun Kesrarat", InstructorID: instructorID,
			Category: "Business", Level: "Beginner", Duration: "6 weeks",
			Price: 39.99, Rating: 4.5, Students: 760,
			Image: "https://images.unsplash.com/photo-1553877522-43269d4ea984?w=400",
			Lessons: []course.Lesson{
				{Title: "Agile Fundamentals", Description: "Introduction to Agile methodology", Duration: "50 min", Content: "Learn Scrum, sprints, and standups..."},
			},
			CreatedAt: now,
		},
	}
}
