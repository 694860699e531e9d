package retrieval

// MethodInfo describes a method for listings and dashboards.
type MethodInfo struct {
	ID              Method   `json:"method_id"`
	Name            string   `json:"name"`
	OntologyFile    string   `json:"ontology_file"`
	Highlight       string   `json:"highlight"`
	OntologyType    string   `json:"ontology_type"`
	CompareRule     string   `json:"compare_rule"`
	PaperBasis      string   `json:"paper_basis"`
	SampleQuestions []string `json:"sample_questions"`
}

// Catalog holds the metadata of every method, in method order.
var Catalog = []MethodInfo{
	{
		ID:              Method1,
		Name:            "Keyword Grounding",
		OntologyFile:    "method1_keyword_grounding.yaml",
		Highlight:       "표면형(alias) 기반 엔티티 링크 + lexical grounding",
		OntologyType:    "검색 최적화형",
		CompareRule:     "질의 표면형과 alias/label을 lexical matching으로 정합",
		PaperBasis:      "DBpedia Spotlight 방식의 surface-form entity linking",
		SampleQuestions: []string{"빠나 우유 가격 알려줘", "banana milk 가격이 얼마야?"},
	},
	{
		ID:              Method2,
		Name:            "Ontology Prompting",
		OntologyFile:    "method2_ontology_prompting.yaml",
		Highlight:       "Constraint/Policy 노드를 프롬프트 규칙으로 주입",
		OntologyType:    "규칙/정책 최적화형",
		CompareRule:     "질의 의도 분류 후 policy/constraint 규칙 만족 여부 검증",
		PaperBasis:      "Constitutional AI 기반 규칙 주도 생성",
		SampleQuestions: []string{"바나나우유 가격을 규칙에 맞는 문장으로 답해줘", "가격 질문이니까 템플릿대로 말해줘"},
	},
	{
		ID:              Method3,
		Name:            "OG-RAG",
		OntologyFile:    "method3_og_rag.yaml",
		Highlight:       "그래프 관계를 포함한 retrieval-augmented generation",
		OntologyType:    "관계/경로 추론형",
		CompareRule:     "노드 검색 + 그래프 relation evidence를 결합해 근거 선택",
		PaperBasis:      "RAG + GraphRAG 구조 결합",
		SampleQuestions: []string{"빠나 우유가 왜 3000원인지 관계 근거까지 설명해줘", "어느 매장에서 팔고 어떤 정책이 연결되는지 알려줘"},
	},
	{
		ID:              Method4,
		Name:            "KG Reasoning Agent",
		OntologyFile:    "method4_kg_reasoning_agent.yaml",
		Highlight:       "도구 호출 + 멀티홉 KG 경로 추론",
		OntologyType:    "관계/경로 추론형",
		CompareRule:     "관계 경로를 생성하고 action/observation 루프로 유효 경로를 검증",
		PaperBasis:      "ReAct + Think-on-Graph 멀티홉 추론",
		SampleQuestions: []string{"빠나 우유가 생산부터 강남 매장까지 오는 경로를 설명해줘", "브랜드에서 매장까지 다단계 경로로 추론해줘"},
	},
	{
		ID:              Method5,
		Name:            "Ontology Enhanced Embedding",
		OntologyFile:    "method5_ontology_enhanced_embedding.yaml",
		Highlight:       "descriptor/동의어 확장 + dense retrieval 점수화",
		OntologyType:    "검색 최적화형",
		CompareRule:     "질의 임베딩과 확장 텍스트 임베딩 유사도 기반 재정렬",
		PaperBasis:      "Sentence-BERT + Dense Passage Retrieval 기반",
		SampleQuestions: []string{"노란 용기 달콤한 바나나 향 우유 가격 알려줘", "cold drink convenience store bestseller 가격 알려줘"},
	},
	{
		ID:              Method6,
		Name:            "Neuro-Symbolic Hybrid",
		OntologyFile:    "method6_neuro_symbolic_hybrid.yaml",
		Highlight:       "신경망 생성 + symbolic rule executor 결합",
		OntologyType:    "규칙/정책 최적화형",
		CompareRule:     "LLM 생성 후보를 symbolic rule로 검증/수정",
		PaperBasis:      "MRKL형 neuro-symbolic routing",
		SampleQuestions: []string{"빠나 우유 가격과 재고를 규칙 위반 없이 자연스럽게 답해줘", "재고가 없으면 품절로 안내하는 규칙을 지켜 답해줘"},
	},
	{
		ID:              Method7,
		Name:            "Reverse Constraint Reasoning",
		OntologyFile:    "method7_reverse_constraint_reasoning.yaml",
		Highlight:       "후보 답 생성 후 역검증(CoVe)으로 필터링",
		OntologyType:    "규칙/정책 최적화형",
		CompareRule:     "후보 답안 생성 후 evidence/constraint 질문으로 검증",
		PaperBasis:      "Chain-of-Verification 기반 self-check",
		SampleQuestions: []string{"후보 답을 검증해서 빠나 우유 가격을 가장 확실하게 알려줘", "근거가 약한 후보는 버리고 검증된 답만 줘"},
	},
	{
		ID:              Method8,
		Name:            "LLM -> Ontology Enrichment",
		OntologyFile:    "method8_llm_to_ontology.yaml",
		Highlight:       "결손 속성 탐지 후 ontology 보강 제안",
		OntologyType:    "지식 확장형",
		CompareRule:     "질의 로그와 결손 속성 신호를 결합해 보강 후보 도출",
		PaperBasis:      "LLM 기반 ontology learning/augmentation",
		SampleQuestions: []string{"빠나 우유에 누락된 속성이 뭐고 어떻게 보강하면 좋아?", "현재 온톨로지 기준으로 추가해야 할 속성/관계를 제안해줘"},
	},
}

// Info returns the catalog entry for m, falling back to DefaultMethod.
func Info(m Method) MethodInfo {
	for _, info := range Catalog {
		if info.ID == m {
			return info
		}
	}
	return Catalog[0]
}
