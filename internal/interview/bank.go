package interview

const quizPlaceholder = "Type your answer here..."

// Bank is the curated question table keyed by interview type then mode.
type Bank map[Type]map[Mode][]Question

// Questions returns the curated list for a type and mode. Unknown types
// use the technical track.
func (b Bank) Questions(t Type, m Mode) []Question {
	byMode, ok := b[t]
	if !ok {
		byMode = b[TypeTechnical]
	}
	return byMode[m]
}

func mcq(id, prompt string, options []string, answer int, explanation string) Question {
	return Question{ID: id, Prompt: prompt, Kind: KindMultipleChoice, Options: options, AnswerIndex: answer, Explanation: explanation}
}

func coding(id, prompt, starter string, rubric ...string) Question {
	return Question{ID: id, Prompt: prompt, Kind: KindCoding, Starter: starter, Rubric: rubric}
}

func quiz(id, prompt string, checklist ...string) Question {
	return Question{ID: id, Prompt: prompt, Kind: KindQuiz, Placeholder: quizPlaceholder, Checklist: checklist}
}

// DefaultBank is the product question bank.
var DefaultBank = Bank{
	TypeTechnical: {
		ModeMCQ: {
			mcq("t-m-1", "What is the time complexity of binary search on a sorted array?",
				[]string{"O(n)", "O(log n)", "O(n log n)", "O(1)"}, 1,
				"Binary search splits the search space in half each iteration: O(log n)."),
			mcq("t-m-2", "Which data structure is best for implementing LRU cache in O(1)?",
				[]string{"Array", "Stack", "HashMap + Doubly Linked List", "Queue"}, 2,
				"HashMap for lookup + Doubly Linked List for O(1) eviction/move-to-front."),
			mcq("t-m-3", "What is a closure in JavaScript?",
				[]string{"A function inside another function", "A variable scope", "A function that retains access to outer variables", "A loop structure"}, 2,
				"Closure is when a function retains access to variables from its outer scope even after the outer function has executed."),
			mcq("t-m-4", "What does 'virtual DOM' mean in React?",
				[]string{"A physical copy of DOM", "An in-memory representation of DOM", "A server-side DOM", "A CSS framework"}, 1,
				"Virtual DOM is a lightweight copy of the actual DOM kept in memory for efficient updates."),
			mcq("t-m-5", "Which of these is NOT a valid HTTP method?",
				[]string{"GET", "POST", "FETCH", "DELETE"}, 2,
				"FETCH is not an HTTP method. Common methods are GET, POST, PUT, DELETE, PATCH."),
		},
		ModeCoding: {
			coding("t-c-1", "Write a function to return the first non-repeating character in a string.",
				"function firstUniqueChar(s) {\n  // write your solution\n}",
				"Correctness", "Time complexity", "Edge cases (empty, all repeat)"),
			coding("t-c-2", "Implement a function that checks if two strings are anagrams.",
				"function areAnagrams(a, b) {\n  // write your solution\n}",
				"Normalize case/spacing", "Counting vs sorting", "Performance"),
			coding("t-c-3", "Write a function to reverse a linked list.",
				"function reverseList(head) {\n  // write your solution\n}",
				"Pointer manipulation", "Edge cases (empty list)", "Time/Space complexity"),
			coding("t-c-4", "Implement a function to find the maximum subarray sum (Kadane's algorithm).",
				"function maxSubArray(nums) {\n  // write your solution\n}",
				"Dynamic programming approach", "Edge cases", "Optimal solution"),
			coding("t-c-5", "Write a function to detect if a linked list has a cycle.",
				"function hasCycle(head) {\n  // write your solution\n}",
				"Two-pointer technique", "Edge cases", "Space optimization"),
		},
		ModeQuiz: {
			quiz("t-q-1", "Briefly describe the difference between processes and threads.",
				"Isolation", "Shared memory", "Context switching"),
			quiz("t-q-2", "Explain event loop and microtask queue in JavaScript.",
				"Call stack", "Task vs microtask", "Ordering"),
			quiz("t-q-3", "What is the difference between SQL and NoSQL databases?",
				"Schema", "Scalability", "Use cases"),
			quiz("t-q-4", "Explain REST API and its constraints.",
				"Stateless", "Uniform interface", "Client-server"),
			quiz("t-q-5", "What are promises in JavaScript and how do they work?",
				"Async operations", "States (pending/fulfilled/rejected)", "Then/catch"),
		},
	},
	TypeBehavioral: {
		ModeMCQ: {
			mcq("b-m-1", "Which structure best fits the STAR method?",
				[]string{"Setup, Try, Answer, Result", "Situation, Task, Action, Result", "Scenario, Target, Action, Review", "State, Task, Action, Review"}, 1,
				"STAR stands for Situation, Task, Action, Result."),
			mcq("b-m-2", "Best response to a conflict question emphasizes...",
				[]string{"Blame others", "Avoid details", "Concrete actions/outcomes", "Speak generally"}, 2,
				"Use specifics: actions taken and measurable outcomes."),
			mcq("b-m-3", "When describing a failure, you should focus on:",
				[]string{"What went wrong", "Who was responsible", "What you learned", "Why it wasn't your fault"}, 2,
				"Focus on lessons learned and growth from the experience."),
			mcq("b-m-4", "In behavioral interviews, 'Tell me about yourself' should:",
				[]string{"Cover your entire life story", "Focus on recent relevant experience", "Be under 30 seconds", "Include personal hobbies"}, 1,
				"Focus on recent, relevant professional experience in 1-2 minutes."),
			mcq("b-m-5", "When asked about teamwork, best to emphasize:",
				[]string{"Your leadership only", "Individual contributions", "Collaboration and shared success", "Team problems"}, 2,
				"Highlight collaboration, communication, and collective achievements."),
		},
		ModeCoding: {
			coding("b-c-1", "Write a concise STAR-format paragraph about handling a tight deadline.",
				"// Use STAR structure\n// S: \n// T: \n// A: \n// R: ",
				"Clarity", "Specificity", "Outcome"),
			coding("b-c-2", "Describe a time you resolved a team conflict using STAR method.",
				"// Situation:\n// Task:\n// Action:\n// Result:",
				"Conflict resolution", "Communication", "Positive outcome"),
			coding("b-c-3", "Write about a time you took initiative on a project.",
				"// STAR format response here",
				"Proactivity", "Impact", "Leadership"),
		},
		ModeQuiz: {
			quiz("b-q-1", "Describe a time you received critical feedback and what you changed.",
				"Ownership", "Action taken", "Result"),
			quiz("b-q-2", "Tell me about a time you failed and what you learned.",
				"Honest reflection", "Growth mindset", "Applied learning"),
			quiz("b-q-3", "Describe a situation where you had to work with a difficult team member.",
				"Patience", "Communication", "Resolution"),
			quiz("b-q-4", "Give an example of a time you showed leadership.",
				"Initiative", "Influence", "Impact"),
			quiz("b-q-5", "Describe a time you went above and beyond your job responsibilities.",
				"Extra effort", "Value added", "Recognition"),
		},
	},
	TypeSystemDesign: {
		ModeMCQ: {
			mcq("s-m-1", "Which component primarily improves read scalability?",
				[]string{"Write-through cache", "Load balancer", "Message queue", "Sharded DB"}, 1,
				"Load balancer distributes reads across replicas/services."),
			mcq("s-m-2", "Eventual consistency is typically associated with...",
				[]string{"CP systems", "AP systems", "CA systems", "ACID RDBMS"}, 1,
				"AP-favoring systems often accept eventual consistency."),
			mcq("s-m-3", "Which is best for handling 1M+ concurrent websocket connections?",
				[]string{"Shared memory", "Message queue", "Load balancer with sticky sessions", "Single server"}, 2,
				"Load balancer with sticky sessions maintains connection state efficiently."),
			mcq("s-m-4", "What is the CAP theorem?",
				[]string{"Caching, API, Performance", "Consistency, Availability, Partition tolerance", "Client, Application, Protocol", "Cache, Analytics, Processing"}, 1,
				"CAP theorem states you can only guarantee 2 of 3: Consistency, Availability, Partition tolerance."),
			mcq("s-m-5", "Which database is best for time-series data?",
				[]string{"MySQL", "MongoDB", "InfluxDB", "Redis"}, 2,
				"InfluxDB is specifically optimized for time-series data."),
		},
		ModeCoding: {
			coding("s-c-1", "Sketch a simple API contract for a URL shortener service.",
				"POST /shorten { url } -> { code }\nGET /:code -> 301 redirect\n// Add notes on rate limiting and analytics",
				"REST clarity", "Edge cases", "Non-functional needs"),
			coding("s-c-2", "Design the data schema for a Twitter-like feed system.",
				"// Tables/Collections:\n// Users:\n// Posts:\n// Relationships:",
				"Normalization", "Indexing", "Scalability"),
			coding("s-c-3", "Outline the architecture for a real-time chat application.",
				"// Components:\n// 1. Client\n// 2. WebSocket server\n// 3. Message queue\n// 4. Database",
				"Real-time handling", "Scalability", "Data consistency"),
		},
		ModeQuiz: {
			quiz("s-q-1", "Explain trade-offs between sharding and replication.",
				"Scale-out", "Availability", "Complexity"),
			quiz("s-q-2", "How would you design a notification system for 100M users?",
				"Push/Pull strategy", "Scalability", "Delivery guarantees"),
			quiz("s-q-3", "Explain how you would handle rate limiting in a distributed system.",
				"Token bucket", "Distributed state", "Fairness"),
			quiz("s-q-4", "Design a caching strategy for an e-commerce product catalog.",
				"Cache invalidation", "Hit rate", "Consistency"),
			quiz("s-q-5", "How would you design a video streaming service like YouTube?",
				"CDN", "Encoding", "Storage", "Scalability"),
		},
	},
}
